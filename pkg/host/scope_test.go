package host

import (
	"errors"
	"testing"

	"github.com/Veraticus/hud-autohide/pkg/poller"
)

func TestStaticScope(t *testing.T) {
	tags := []string{poller.DefaultEnablingTag}
	scope := NewStaticScope(tags, nil)

	tags[0] = "mutated"
	if got := scope.Tags(); len(got) != 1 || got[0] != poller.DefaultEnablingTag {
		t.Errorf("Tags() = %v, want a copy of the original tags", got)
	}
	if got := scope.Modes(); len(got) != 0 {
		t.Errorf("Modes() = %v, want none", got)
	}

	scope.Update(nil, []string{poller.SleepMode})
	if len(scope.Tags()) != 0 {
		t.Error("Update() should replace tags")
	}
	if got := scope.Modes(); len(got) != 1 || got[0] != poller.SleepMode {
		t.Errorf("Modes() = %v, want [sleep]", got)
	}
}

func TestScreenSaverModes(t *testing.T) {
	tests := []struct {
		name      string
		baseModes []string
		active    bool
		err       error
		expected  []string
		queried   bool
	}{
		{
			name:     "Screensaver active",
			active:   true,
			expected: []string{poller.SleepMode},
			queried:  true,
		},
		{
			name:      "Screensaver inactive",
			baseModes: []string{"command"},
			expected:  []string{"command"},
			queried:   true,
		},
		{
			name:      "Query fails",
			baseModes: []string{"command"},
			err:       errors.New("no such name"),
			expected:  []string{"command"},
			queried:   true,
		},
		{
			name:      "Already asleep",
			baseModes: []string{poller.SleepMode},
			active:    true,
			expected:  []string{poller.SleepMode},
			queried:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queried := false
			base := NewStaticScope([]string{poller.DefaultEnablingTag}, tt.baseModes)
			modes := newScreenSaverModes(base, func() (bool, error) {
				queried = true
				return tt.active, tt.err
			}, nil)

			got := modes.Modes()
			if len(got) != len(tt.expected) {
				t.Fatalf("Modes() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Modes()[%d] = %s, want %s", i, got[i], tt.expected[i])
				}
			}
			if queried != tt.queried {
				t.Errorf("queried = %v, want %v", queried, tt.queried)
			}
			if tags := modes.Tags(); len(tags) != 1 || tags[0] != poller.DefaultEnablingTag {
				t.Errorf("Tags() = %v, want base tags", tags)
			}
		})
	}
}
