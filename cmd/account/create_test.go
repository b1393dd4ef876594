package account

import (
	"testing"

	"github.com/bluepython508/monfari/internal/app"
)

func TestResolveNotesUsesFlagValueWhenAnyFlagSet(t *testing.T) {
	cases := []struct {
		name  string
		flag  string
		value string
		want  string
	}{
		{"type only", "type", "physical", ""},
		{"name only", "name", "Checking", ""},
		{"notes given", "notes", "shared card", "shared card"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := NewCreateCmd(app.NewSession(nil, nil))
			if err := cmd.Flags().Set(tc.flag, tc.value); err != nil {
				t.Fatalf("set --%s: %v", tc.flag, err)
			}
			flags := &createFlags{}
			if tc.flag == "notes" {
				flags.Notes = tc.value
			}
			notes, err := resolveNotes(cmd, flags)
			if err != nil {
				t.Fatalf("resolveNotes: %v", err)
			}
			if notes != tc.want {
				t.Errorf("notes = %q, want %q", notes, tc.want)
			}
		})
	}
}
