package cache

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesseract-hub/cloud-translate-service/internal/config"
	"github.com/tesseract-hub/cloud-translate-service/internal/models"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func testFingerprint() models.Fingerprint {
	return models.NewFingerprint(models.TranslationRequest{
		SourceLanguageCode: "en",
		TargetLanguageCode: "fr",
		Text:               "hello",
	})
}

func newMiniredisCache(t *testing.T, ttl time.Duration) (*TranslationCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := NewTranslationCache(config.CacheConfig{
		RedisURL:       "redis://" + mr.Addr(),
		ConnectTimeout: 100 * time.Millisecond,
		TTL:            ttl,
	}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestTranslationCache_GetMiss(t *testing.T) {
	c, _ := newMiniredisCache(t, 0)

	val, ok := c.Get(context.Background(), testFingerprint())
	assert.False(t, ok)
	assert.Empty(t, val)
}

func TestTranslationCache_SetThenGet(t *testing.T) {
	c, mr := newMiniredisCache(t, 0)
	ctx := context.Background()
	fp := testFingerprint()

	c.Set(ctx, fp, "bonjour")

	val, ok := c.Get(ctx, fp)
	require.True(t, ok)
	assert.Equal(t, "bonjour", val)

	stored, err := mr.Get(fp.Key())
	require.NoError(t, err)
	assert.Equal(t, "bonjour", stored)
	assert.Zero(t, mr.TTL(fp.Key()))
}

func TestTranslationCache_SetAppliesTTL(t *testing.T) {
	c, mr := newMiniredisCache(t, time.Hour)
	fp := testFingerprint()

	c.Set(context.Background(), fp, "bonjour")

	assert.Equal(t, time.Hour, mr.TTL(fp.Key()))
}

func TestTranslationCache_FailOpenWhenServerGone(t *testing.T) {
	c, mr := newMiniredisCache(t, 0)
	ctx := context.Background()
	fp := testFingerprint()

	c.Set(ctx, fp, "bonjour")
	mr.Close()

	start := time.Now()
	val, ok := c.Get(ctx, fp)
	assert.False(t, ok)
	assert.Empty(t, val)

	assert.NotPanics(t, func() { c.Set(ctx, fp, "salut") })
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewTranslationCache_UnreachableServerStillStarts(t *testing.T) {
	c, err := NewTranslationCache(config.CacheConfig{
		RedisURL:       "redis://127.0.0.1:1",
		ConnectTimeout: 50 * time.Millisecond,
	}, testLogger())
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get(context.Background(), testFingerprint())
	assert.False(t, ok)
	assert.Error(t, c.Ping(context.Background()))
}

// newSilentServer accepts connections and never replies
func newSilentServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var conns []net.Conn
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, conn)
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		<-done
		for _, conn := range conns {
			_ = conn.Close()
		}
	})
	return ln.Addr().String()
}

func TestTranslationCache_SilentServerIsBounded(t *testing.T) {
	timeout := 100 * time.Millisecond
	c, err := NewTranslationCache(config.CacheConfig{
		RedisURL:       "redis://" + newSilentServer(t),
		ConnectTimeout: timeout,
	}, testLogger())
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	fp := testFingerprint()

	start := time.Now()
	val, ok := c.Get(ctx, fp)
	assert.False(t, ok)
	assert.Empty(t, val)
	assert.Less(t, time.Since(start), 5*timeout)

	start = time.Now()
	c.Set(ctx, fp, "bonjour")
	assert.Less(t, time.Since(start), 5*timeout)
}

func TestNewTranslationCache_InvalidURL(t *testing.T) {
	_, err := NewTranslationCache(config.CacheConfig{RedisURL: "http://not-redis"}, testLogger())
	assert.Error(t, err)
}

func TestNew_WithoutURLReturnsNoop(t *testing.T) {
	c, err := New(config.CacheConfig{}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, NoopCache{}, c)

	ctx := context.Background()
	c.Set(ctx, testFingerprint(), "bonjour")
	_, ok := c.Get(ctx, testFingerprint())
	assert.False(t, ok)
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}
