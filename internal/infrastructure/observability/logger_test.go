package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestInitLogger_Level(t *testing.T) {
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	})

	t.Run("configured level wins", func(t *testing.T) {
		InitLogger("booking-backend", "production", "warn")
		assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	})

	t.Run("development defaults to debug", func(t *testing.T) {
		InitLogger("booking-backend", "development", "")
		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		InitLogger("booking-backend", "production", "loud")
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})
}

func TestBookingLogger_Fields(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() {
		log.Logger = previous
	})

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	BookingLogger(context.Background(), "bkg-1", "AC-ABC234").Info().Msg("booking cancelled")

	assert.Contains(t, buf.String(), `"booking_id":"bkg-1"`)
	assert.Contains(t, buf.String(), `"public_code":"AC-ABC234"`)
	assert.Contains(t, buf.String(), `"message":"booking cancelled"`)
}
