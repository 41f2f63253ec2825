package domain

import "testing"

func TestParseSemVer(t *testing.T) {
	tests := []struct {
		in      string
		want    SemVer
		wantErr bool
	}{
		{"1.27.6", SemVer{1, 27, 6}, false},
		{"v1.27.6", SemVer{1, 27, 6}, false},
		{"v1.27.6-rc.1", SemVer{1, 27, 6}, false},
		{"1.27.6+build5", SemVer{1, 27, 6}, false},
		{"1.2", SemVer{1, 2, 0}, false},
		{" v0.14.52 ", SemVer{0, 14, 52}, false},
		{"", SemVer{}, true},
		{"abc", SemVer{}, true},
		{"1.x.3", SemVer{}, true},
	}

	for _, tt := range tests {
		got, err := ParseSemVer(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSemVer(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseSemVer(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSemVer_AtLeast(t *testing.T) {
	tests := []struct {
		v, other SemVer
		want     bool
	}{
		{SemVer{1, 2, 3}, SemVer{1, 2, 3}, true},
		{SemVer{1, 2, 4}, SemVer{1, 2, 3}, true},
		{SemVer{1, 3, 0}, SemVer{1, 2, 9}, true},
		{SemVer{2, 0, 0}, SemVer{1, 9, 9}, true},
		{SemVer{1, 2, 2}, SemVer{1, 2, 3}, false},
		{SemVer{0, 9, 9}, SemVer{1, 0, 0}, false},
	}

	for _, tt := range tests {
		if got := tt.v.AtLeast(tt.other); got != tt.want {
			t.Errorf("%v.AtLeast(%v) = %v, want %v", tt.v, tt.other, got, tt.want)
		}
	}
}

func TestRunState_String(t *testing.T) {
	tests := []struct {
		state RunState
		want  string
	}{
		{StateStopped, "Stopped"},
		{StateStarting, "Starting"},
		{StateRunning, "Running"},
		{StateStopping, "Stopping"},
		{StateRestarting, "Restarting"},
		{RunState(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("RunState(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}
