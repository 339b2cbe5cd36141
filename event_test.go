package pollkit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joeycumines/pollkit"
)

func TestPollModeString(t *testing.T) {
	cases := []struct {
		mode pollkit.PollMode
		want string
	}{
		{pollkit.Oneshot, "oneshot"},
		{pollkit.Level, "level"},
		{pollkit.Edge, "edge"},
		{pollkit.EdgeOneshot, "edge-oneshot"},
		{pollkit.PollMode(255), "unknown"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.mode.String())
	}
}
