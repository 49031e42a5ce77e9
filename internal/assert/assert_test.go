package assert

import "testing"

func TestLength(t *testing.T) {
	Length("abcd", 4)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for wrong length")
		}
	}()
	Length("abc", 4)
}
