package scenario

import (
	"encoding/json"
	"reflect"
	"slices"
	"sort"

	"github.com/tidwall/gjson"
)

func (r *runner) expect(where string, e *Expect) {
	if e.Calls != nil {
		want := *e.Calls
		if want == nil {
			want = []string{}
		}
		got := slices.Clone(r.calls)
		if got == nil {
			got = []string{}
		}
		if !slices.Equal(got, want) {
			r.failf(where, "calls = %v, want %v", got, want)
		}
	}

	if e.Types != nil {
		got := r.hub.Types()
		if got == nil {
			got = []string{}
		}
		want := slices.Clone(*e.Types)
		sort.Strings(want)
		if !slices.Equal(got, want) {
			r.failf(where, "types = %v, want %v", got, want)
		}
	}

	if e.Subscriptions != nil {
		if got := r.hub.Stats().Subscriptions; got != *e.Subscriptions {
			r.failf(where, "subscriptions = %d, want %d", got, *e.Subscriptions)
		}
	}

	if e.Passthrough {
		if r.lastEmitted == nil || !sameObject(r.lastEvent, r.lastEmitted) {
			r.failf(where, "last event is not the emitted object")
		}
	}

	if len(e.Event) > 0 {
		r.expectEvent(where, e.Event)
	}
}

// expectEvent matches gjson paths against the JSON form of the last event.
func (r *runner) expectEvent(where string, paths map[string]any) {
	if r.lastEvent == nil {
		r.failf(where, "no event received")
		return
	}
	raw, err := json.Marshal(r.lastEvent)
	if err != nil {
		r.failf(where, "encoding last event: %v", err)
		return
	}

	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, path := range keys {
		want := paths[path]
		res := gjson.GetBytes(raw, path)
		if !res.Exists() {
			if want != nil {
				r.failf(where, "event path %q missing, want %v", path, want)
			}
			continue
		}
		if !jsonEqual(res.Raw, want) {
			r.failf(where, "event path %q = %s, want %v", path, res.Raw, want)
		}
	}
}

// jsonEqual compares a raw JSON value with a decoded scenario value through a
// JSON round trip, so integer and float spellings compare equal.
func jsonEqual(raw string, want any) bool {
	var got any
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		return false
	}
	wantRaw, err := json.Marshal(want)
	if err != nil {
		return false
	}
	var norm any
	if err := json.Unmarshal(wantRaw, &norm); err != nil {
		return false
	}
	return reflect.DeepEqual(got, norm)
}

// sameObject reports whether a and b are the same map, or the same pointer.
func sameObject(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Pointer:
		return va.Pointer() == vb.Pointer()
	}
	return false
}
