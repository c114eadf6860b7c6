package db

import (
	"context"
	"registration-verifier/internal/config"
	"registration-verifier/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitForInstance_notConfigured(t *testing.T) {
	clear1 := util.SetEnv("SMOKE_CONFIG_FILE", "testdata/missing.yaml")
	defer clear1()
	clear2 := util.SetEnv("SMOKE_PG_DSN", "")
	defer clear2()
	assert.NoError(t, config.Load())

	assert.False(t, Enabled())
	err := WaitForInstance(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestWaitForInstance_unreachable(t *testing.T) {
	clear1 := util.SetEnv("SMOKE_CONFIG_FILE", "testdata/missing.yaml")
	defer clear1()
	clear2 := util.SetEnv("SMOKE_PG_DSN", "postgres://postgres@127.0.0.1:1/postgres?sslmode=disable&connect_timeout=1")
	defer clear2()
	assert.NoError(t, config.Load())

	assert.True(t, Enabled())
	start := time.Now()
	err := WaitForInstance(context.Background(), 600*time.Millisecond)
	assert.Error(t, err)
	assert.Less(t, int64(time.Since(start)), int64(5*time.Second))
}
