package carttoken

import "testing"

func TestObserveTransitions(t *testing.T) {
	cases := []struct {
		name       string
		from       State
		response   string
		wantToken  string
		wantActive bool
		wantEffect Effect
	}{
		{"absent stays absent on blank", Absent(), "", "", false, EffectNone},
		{"absent becomes active", Absent(), "tok-1", "tok-1", true, EffectPersist},
		{"same token is a no-op", Active("tok-1"), "tok-1", "tok-1", true, EffectNone},
		{"blank keeps active", Active("tok-1"), "  ", "tok-1", true, EffectNone},
		{"rotation", Active("tok-1"), "tok-2", "tok-2", true, EffectPersist},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, effect := tc.from.Observe(tc.response)
			token, active := next.Token()
			if token != tc.wantToken || active != tc.wantActive || effect != tc.wantEffect {
				t.Fatalf("got (%q, %v, %s), want (%q, %v, %s)", token, active, effect, tc.wantToken, tc.wantActive, tc.wantEffect)
			}
		})
	}
}

func TestClearAlwaysDeletes(t *testing.T) {
	for _, from := range []State{Absent(), Active("tok-1")} {
		next, effect := from.Clear()
		if next.IsActive() || effect != EffectDelete {
			t.Fatalf("clear from %+v gave %+v %s", from, next, effect)
		}
	}
}

func TestActiveBlankIsAbsent(t *testing.T) {
	if Active("  ").IsActive() {
		t.Fatal("blank token must not be active")
	}
}
