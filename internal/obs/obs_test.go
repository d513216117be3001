// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package obs

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersMetricsAndServesHandler(t *testing.T) {
	o := New("cubesatd-test")
	require.NotNil(t, o.Metrics)
	o.Metrics.Reconciliations.Inc()
	o.Metrics.BufferDepth.Set(3)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	o.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "cubesat_store_reconciliations_total")
}

func TestShutdown(t *testing.T) {
	o := New("cubesatd-test")
	assert.NoError(t, o.Shutdown(context.Background()))
}
