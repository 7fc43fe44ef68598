package eventhub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type withIface struct {
	v any
}

func TestSameRef(t *testing.T) {
	p1, p2 := &owner{}, &owner{}
	m1, m2 := map[string]any{}, map[string]any{}
	s := []int{1, 2, 3}
	f := func() {}
	ch := make(chan int)

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil and value", nil, p1, false},
		{"same pointer", p1, p1, true},
		{"equal pointees", p1, p2, false},
		{"same map", m1, m1, true},
		{"equal maps", m1, m2, false},
		{"same slice", s, s, true},
		{"subslice", s, s[:2], false},
		{"same func", f, f, true},
		{"same chan", ch, ch, true},
		{"equal strings", "a", "a", true},
		{"different types", 1, int64(1), false},
		{"struct with func field", withIface{v: f}, withIface{v: f}, false},
		{"struct with same pointer", withIface{v: p1}, withIface{v: p1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sameRef(tt.a, tt.b))
		})
	}
}

func TestFunc_Identity(t *testing.T) {
	fn := func(ctx context.Context, receiver any, event any) error { return nil }

	a := Func(fn)
	b := Func(fn)

	assert.True(t, sameRef(Handler(a), Handler(a)))
	assert.False(t, sameRef(Handler(a), Handler(b)), "each Func call creates a distinct handler")
}
