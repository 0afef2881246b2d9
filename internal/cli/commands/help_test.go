package commands

import "testing"

func TestRunHelp(t *testing.T) {
	tests := []struct {
		args    []string
		wantErr bool
	}{
		{nil, false},
		{[]string{"generate"}, false},
		{[]string{"gen"}, false},
		{[]string{"LOCATE"}, false},
		{[]string{"runs"}, false},
		{[]string{"settings"}, false},
		{[]string{"nonexistent"}, true},
	}
	for _, tt := range tests {
		err := RunHelp(tt.args)
		if tt.wantErr && err == nil {
			t.Errorf("RunHelp(%q): expected error", tt.args)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("RunHelp(%q): unexpected error %v", tt.args, err)
		}
	}
}

func TestEveryCommandHasHelpTopic(t *testing.T) {
	for _, cmd := range List() {
		if cmd.Name == "version" {
			continue
		}
		if _, ok := helpTopics[cmd.Name]; !ok {
			t.Errorf("command %q has no help topic", cmd.Name)
		}
	}
}
