package main

import (
	"bytes"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milk9111/grapplehook/grapple"
)

func TestRunOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		opts   simOptions
		reason grapple.ExitReason
	}{
		{name: "wall", opts: simOptions{Distance: 600, Ticks: 600, Config: "grapple.yaml"}, reason: grapple.ExitArrival},
		{name: "obstructed", opts: simOptions{Distance: 800, Ticks: 600, Config: "grapple.yaml", Obstruct: true}, reason: grapple.ExitObstruction},
		{name: "platform", opts: simOptions{Distance: 600, Ticks: 600, Config: "grapple.yaml", Platform: true}, reason: grapple.ExitArrival},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := run(tt.opts, io.Discard, log.New(io.Discard, "", 0))
			require.NoError(t, err)
			require.True(t, res.Started)
			require.True(t, res.Ended)
			require.Equal(t, tt.reason, res.Reason)
			require.GreaterOrEqual(t, res.MaxSpd, 500.0)
		})
	}
}

func TestRunTrace(t *testing.T) {
	var out bytes.Buffer
	res, err := run(simOptions{Distance: 600, Ticks: 3, Config: "grapple.yaml", Trace: true}, &out, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	require.False(t, res.Ended)
	require.Equal(t, 3, res.Ticks)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[0], "tick"))
}

func TestRunRejectsBadOptions(t *testing.T) {
	_, err := run(simOptions{Distance: 0, Ticks: 1}, io.Discard, log.New(io.Discard, "", 0))
	require.Error(t, err)
	_, err = run(simOptions{Distance: 10, Ticks: 0}, io.Discard, log.New(io.Discard, "", 0))
	require.Error(t, err)
}
