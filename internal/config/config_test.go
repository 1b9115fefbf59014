package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValidOnceInputGiven(t *testing.T) {
	o := Default()
	o.InputFilenames = []string{"main.vn"}
	require.NoError(t, o.Validate())
}

func TestValidateRejectsBadFields(t *testing.T) {
	base := func() Options {
		o := Default()
		o.InputFilenames = []string{"main.vn"}
		return o
	}

	cases := []struct {
		name   string
		mutate func(*Options)
	}{
		{"bad opt level", func(o *Options) { o.OptimizationLevel = "O9" }},
		{"bad emit", func(o *Options) { o.Emit = "wat" }},
		{"bad logging level", func(o *Options) { o.LoggingLevel = "shout" }},
		{"bad int size", func(o *Options) { o.IntSize = 7 }},
		{"negative jobs", func(o *Options) { o.Jobs = -1 }},
		{"no inputs", func(o *Options) { o.InputFilenames = nil }},
		{"empty output", func(o *Options) { o.OutputFilename = "" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			o := base()
			c.mutate(&o)
			require.Error(t, o.Validate())
		})
	}
}
