package emulator

import "testing"

func TestDisasm(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	cases := []struct {
		instr Instruction
		want  string
	}{
		{0x00000000, "nop"},
		{0x3C08BFC0, "lui t0, 0xbfc0"},
		{0x35291234, "ori t1, t1, 0x1234"},
		{0x10000002, "beq r0, r0, 0xbfc0000c"},
		{0x0109001A, "div t0, t1"},
		{0x03E00008, "jr ra"},
		{0x42000018, "eret"},
		{0x7D280000, "sq t0, 0(t1)"},
		{0x60000000, ".word 0x60000000"},
	}

	for _, c := range cases {
		got := disasm(c.instr, 0xBFC00000)

		assert(got == c.want)
		if got != c.want {
			t.Logf("got %q, want %q", got, c.want)
		}
	}
}
