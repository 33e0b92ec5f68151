package sys

import "testing"

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{NoError, "JsNoError"},
		{ErrorInvalidArgument, "JsErrorInvalidArgument"},
		{ErrorScriptException, "JsErrorScriptException"},
		{ErrorFatal, "JsErrorFatal"},
		{ErrorCode(0x1FFFF), "JsErrorCode(0x1ffff)"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ErrorCode(0x%x).String() = %q, want %q", uint32(tt.code), got, tt.want)
		}
	}
}

func TestErrorCode_Category(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want ErrorCode
	}{
		{ErrorNullArgument, CategoryUsage},
		{ErrorInvalidContext, CategoryUsage},
		{ErrorOutOfMemory, CategoryEngine},
		{ErrorScriptCompile, CategoryScript},
		{ErrorWrongRuntime, CategoryFatal},
		{NoError, 0},
	}
	for _, tt := range tests {
		if got := tt.code.Category(); got != tt.want {
			t.Errorf("%v.Category() = 0x%x, want 0x%x", tt.code, uint32(got), uint32(tt.want))
		}
	}
}

func TestValueType_String(t *testing.T) {
	if TypeFunction.String() != "function" {
		t.Fatalf("unexpected name %q", TypeFunction.String())
	}
	if ValueType(99).String() != "ValueType(99)" {
		t.Fatalf("unexpected name %q", ValueType(99).String())
	}
}

func TestWide(t *testing.T) {
	tests := []struct {
		in   string
		nul  bool
		want int
	}{
		{"", false, 0},
		{"", true, 1},
		{"abc", true, 4},
		{"é", false, 1},
		{"𝄞", false, 2}, // surrogate pair
	}
	for _, tt := range tests {
		w := ToWide(tt.in, tt.nul)
		if len(w) != tt.want {
			t.Errorf("ToWide(%q, %v) has %d units, want %d", tt.in, tt.nul, len(w), tt.want)
		}
		if tt.nul && w[len(w)-1] != 0 {
			t.Errorf("ToWide(%q) not terminated", tt.in)
		}
		if got := FromWide(w); got != tt.in {
			t.Errorf("FromWide(ToWide(%q)) = %q", tt.in, got)
		}
	}
}
