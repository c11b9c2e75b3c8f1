package cpu

import "testing"

func TestFlag(t *testing.T) {
	c, _ := newTestCPU()
	t.Run("clear", func(t *testing.T) {
		for i := FlagCarry; i <= FlagZero; i++ {
			c.clearFlag(i)
			if c.isFlagSet(i) {
				t.Errorf("expected flag %d to be unset, got set", i)
			}
		}
	})
	t.Run("set", func(t *testing.T) {
		for i := FlagCarry; i <= FlagZero; i++ {
			c.setFlag(i)
			if !c.isFlagSet(i) {
				t.Errorf("expected flag %d to be set, got unset", i)
			}
		}
		if c.F != 0xF0 {
			t.Errorf("expected F to be 0xF0, got 0x%02X", c.F)
		}
	})
	t.Run("setFlags", func(t *testing.T) {
		c.setFlags(true, false, true, false)
		if c.F != 0xA0 {
			t.Errorf("expected F to be 0xA0, got 0x%02X", c.F)
		}
		if !c.isFlagsSet(FlagZero, FlagHalfCarry) {
			t.Errorf("expected Z and H to be set")
		}
		if c.isFlagsSet(FlagZero, FlagCarry) {
			t.Errorf("expected Z and C not to both be set")
		}
	})
}
