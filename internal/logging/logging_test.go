package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Verbosity(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, 0)

	log.Info("created resource group", "name", "rgeh0123")
	log.V(1).Info("poll attempt", "attempt", 2)
	log.Error(errors.New("boom"), "failover failed")

	out := buf.String()
	assert.Contains(t, out, `"msg"="created resource group"`)
	assert.Contains(t, out, `"name"="rgeh0123"`)
	assert.NotContains(t, out, "poll attempt")
	assert.Contains(t, out, "failover failed")
	assert.Contains(t, out, `"error"="boom"`)
}

func TestNew_Verbose(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, 1)
	defer New(&bytes.Buffer{}, 0)

	log.V(1).Info("poll attempt", "attempt", 2)
	assert.Contains(t, buf.String(), "poll attempt")
}
