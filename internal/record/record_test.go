package record

import "testing"

func TestFieldRender(t *testing.T) {
	f := Field{Code: "0x2", Text: "CHECK CONDITION"}

	tests := []struct {
		mode Mode
		want string
	}{
		{Raw, "0x2"},
		{Decoded, "CHECK CONDITION"},
		{Combined, "0x2 CHECK CONDITION"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			if got := f.Render(tt.mode); got != tt.want {
				t.Errorf("Render(%s) = %q, want %q", tt.mode, got, tt.want)
			}
		})
	}
}

func TestFieldRenderCombinedIsConcatenation(t *testing.T) {
	fields := []Field{
		{Code: "0x1a", Text: "MODE SENSE(6)"},
		{Code: "0x7f", Text: ""},
		{Code: "", Text: ""},
	}
	for _, f := range fields {
		want := f.Render(Raw) + " " + f.Render(Decoded)
		if got := f.Render(Combined); got != want {
			t.Errorf("Combined = %q, want %q", got, want)
		}
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("raw") != Raw || ParseMode("decoded") != Decoded {
		t.Error("known modes misparsed")
	}
	if ParseMode("") != Combined || ParseMode("bogus") != Combined {
		t.Error("fallback mode is not Combined")
	}
}

func TestLogTypeLabel(t *testing.T) {
	if ThrottledDeviceLog.Label() != "Throttled Device Log" {
		t.Errorf("Label = %q", ThrottledDeviceLog.Label())
	}
	if DeviceIOLog.Label() != "Device I/O Log" {
		t.Errorf("Label = %q", DeviceIOLog.Label())
	}
}
