package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-timetable-api/internal/timetable"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "timetable", cfg.Redis.KeyPrefix)
	assert.Equal(t, 10*time.Minute, cfg.CORS.MaxAge)
	assert.Equal(t, "course-timetable-api", cfg.Log.Service)
	assert.Equal(t, 64, cfg.Timetable.SweepThreshold)

	engine, err := cfg.Timetable.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, timetable.TimeLabel(8*60), engine.Window.Start)
	assert.Equal(t, timetable.TimeLabel(21*60), engine.Window.End)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " https://a.edu , ,https://b.edu")
	t.Setenv("OPTIONS_CACHE_TTL", "not-a-duration")
	t.Setenv("DIRECTORY_LOCAL_USERS", "alice:$2a$10$hash, broken ,:nohash")
	t.Setenv("TIMETABLE_WINDOW_START", "07:30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.edu", "https://b.edu"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.Options.CacheTTL)
	assert.Equal(t, map[string]string{"alice": "$2a$10$hash"}, cfg.Directory.LocalUsers)
	assert.Equal(t, "07:30", cfg.Timetable.WindowStart)
}

func TestLoadRejectsInvertedWindow(t *testing.T) {
	t.Setenv("TIMETABLE_WINDOW_START", "21:00")
	t.Setenv("TIMETABLE_WINDOW_END", "08:00")

	_, err := Load()
	assert.ErrorIs(t, err, timetable.ErrInvalidWindow)
}

func TestValidate(t *testing.T) {
	valid := TimetableConfig{WindowStart: "08:00", WindowEnd: "21:00", WidthDecay: 0.9}

	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"defaults", Config{Timetable: valid}, true},
		{"zero decay", Config{Timetable: TimetableConfig{WindowStart: "08:00", WindowEnd: "21:00"}}, false},
		{"decay above one", Config{Timetable: TimetableConfig{WindowStart: "08:00", WindowEnd: "21:00", WidthDecay: 1.5}}, false},
		{"malformed window", Config{Timetable: TimetableConfig{WindowStart: "8am", WindowEnd: "21:00", WidthDecay: 0.9}}, false},
		{"bypass in production", Config{Env: EnvProduction, Timetable: valid, Directory: DirectoryConfig{Bypass: true}}, false},
		{"bypass in development", Config{Env: EnvDevelopment, Timetable: valid, Directory: DirectoryConfig{Bypass: true}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
