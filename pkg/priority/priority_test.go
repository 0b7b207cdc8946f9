// SPDX-License-Identifier: MPL-2.0

package priority

import (
	"errors"
	"testing"

	"github.com/modcurator/modcurator/pkg/definition"
)

func def(mod definition.ModName, fileName string, deps ...definition.ModName) definition.Definition {
	return definition.New("t1", "common/buildings/x.txt", mod, deps...).WithFileName(fileName)
}

func order(mods ...definition.ModName) []definition.ModName { return mods }

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		defs       []definition.Definition
		loadOrder  []definition.ModName
		mode       Mode
		wantMod    definition.ModName
		wantFile   string
		wantReason Reason
	}{
		{
			name:       "single definition",
			defs:       []definition.Definition{def("a", "00.txt")},
			loadOrder:  order("a"),
			mode:       ModeFIOS,
			wantMod:    "a",
			wantFile:   "00.txt",
			wantReason: ReasonNone,
		},
		{
			name:       "last loaded mod wins",
			defs:       []definition.Definition{def("a", "00.txt"), def("b", "00.txt"), def("c", "00.txt")},
			loadOrder:  order("c", "a", "b"),
			mode:       ModeFIOS,
			wantMod:    "b",
			wantFile:   "00.txt",
			wantReason: ReasonModOrder,
		},
		{
			name:       "override beats load order",
			defs:       []definition.Definition{def("a", "00.txt"), def("b", "00.txt", "a")},
			loadOrder:  order("b", "a"),
			mode:       ModeLIOS,
			wantMod:    "b",
			wantFile:   "00.txt",
			wantReason: ReasonModOverride,
		},
		{
			name: "override on multiple dependencies",
			defs: []definition.Definition{
				def("fake1", "test1.txt", "fake2", "fake3"),
				def("fake2", "test1.txt"),
				def("fake3", "test.txt"),
			},
			loadOrder:  order("fake1", "fake2", "fake3"),
			mode:       ModeFIOS,
			wantMod:    "fake1",
			wantFile:   "test1.txt",
			wantReason: ReasonModOverride,
		},
		{
			name:       "override narrows then load order decides",
			defs:       []definition.Definition{def("a", "00.txt"), def("b", "00.txt", "a"), def("c", "00.txt")},
			loadOrder:  order("c", "b", "a"),
			mode:       ModeFIOS,
			wantMod:    "b",
			wantFile:   "00.txt",
			wantReason: ReasonModOrder,
		},
		{
			name:       "cyclic overrides fall back to load order",
			defs:       []definition.Definition{def("a", "00.txt", "b"), def("b", "00.txt", "a")},
			loadOrder:  order("b", "a"),
			mode:       ModeFIOS,
			wantMod:    "a",
			wantFile:   "00.txt",
			wantReason: ReasonModOrder,
		},
		{
			name:       "self dependency is not an override",
			defs:       []definition.Definition{def("a", "00.txt", "a"), def("b", "00.txt")},
			loadOrder:  order("a", "b"),
			mode:       ModeFIOS,
			wantMod:    "b",
			wantFile:   "00.txt",
			wantReason: ReasonModOrder,
		},
		{
			name:       "fios picks first file of the same mod",
			defs:       []definition.Definition{def("a", "10_z.txt"), def("a", "01_a.txt")},
			loadOrder:  order("a"),
			mode:       ModeFIOS,
			wantMod:    "a",
			wantFile:   "01_a.txt",
			wantReason: ReasonFIOS,
		},
		{
			name:       "lios picks last file of the same mod",
			defs:       []definition.Definition{def("a", "10_z.txt"), def("a", "01_a.txt")},
			loadOrder:  order("a"),
			mode:       ModeLIOS,
			wantMod:    "a",
			wantFile:   "10_z.txt",
			wantReason: ReasonLIOS,
		},
		{
			name:       "mods missing from load order tie and use file sequence",
			defs:       []definition.Definition{def("x", "b.txt"), def("y", "a.txt")},
			loadOrder:  nil,
			mode:       ModeFIOS,
			wantMod:    "y",
			wantFile:   "a.txt",
			wantReason: ReasonFIOS,
		},
		{
			name:       "listed mod outranks unlisted mod",
			defs:       []definition.Definition{def("listed", "a.txt"), def("unlisted", "z.txt")},
			loadOrder:  order("listed"),
			mode:       ModeLIOS,
			wantMod:    "listed",
			wantFile:   "a.txt",
			wantReason: ReasonModOrder,
		},
		{
			name:       "same file name falls back to mod name",
			defs:       []definition.Definition{def("b", "00.txt"), def("a", "00.txt")},
			loadOrder:  nil,
			mode:       ModeLIOS,
			wantMod:    "b",
			wantFile:   "00.txt",
			wantReason: ReasonLIOS,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Evaluate(tt.defs, tt.loadOrder, tt.mode)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got.Winner.ModName != tt.wantMod || got.Winner.EffectiveFileName() != tt.wantFile {
				t.Errorf("winner = %s/%s, want %s/%s", got.Winner.ModName, got.Winner.EffectiveFileName(), tt.wantMod, tt.wantFile)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("reason = %s, want %s", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	t.Parallel()

	defs := []definition.Definition{
		def("a", "02.txt"),
		def("b", "01.txt", "c"),
		def("c", "03.txt"),
		def("d", "01.txt"),
	}
	loadOrder := order("d", "c", "b", "a")

	first, err := Evaluate(defs, loadOrder, ModeFIOS)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	for range 50 {
		got, err := Evaluate(defs, loadOrder, ModeFIOS)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if got.Winner.ModName != first.Winner.ModName || got.Reason != first.Reason {
			t.Fatalf("non-deterministic result: %+v vs %+v", got, first)
		}
	}
}

func TestEvaluate_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := Evaluate(nil, nil, ModeFIOS); !errors.Is(err, definition.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty set, got %v", err)
	}

	mixed := []definition.Definition{
		definition.New("t1", "a.txt", "a"),
		definition.New("t2", "a.txt", "b"),
	}
	if _, err := Evaluate(mixed, nil, ModeFIOS); !errors.Is(err, definition.ErrInvalidConflictSet) {
		t.Errorf("expected ErrInvalidConflictSet, got %v", err)
	}

	_, err := Evaluate([]definition.Definition{def("a", "00.txt")}, nil, Mode("sideways"))
	if !errors.Is(err, definition.ErrInvalidInput) || !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected invalid mode to wrap ErrInvalidInput and ErrInvalidMode, got %v", err)
	}
}

func TestEvaluateAll(t *testing.T) {
	t.Parallel()

	sets := definition.GroupConflicts([]definition.Definition{
		definition.New("x", "a.txt", "m1"),
		definition.New("x", "a.txt", "m2"),
		definition.New("y", "b.txt", "m1", "m2"),
		definition.New("y", "b.txt", "m2"),
	})

	results, err := EvaluateAll(sets, order("m1", "m2"), ModeFIOS)
	if err != nil {
		t.Fatalf("EvaluateAll() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Winner.ModName != "m2" || results[0].Reason != ReasonModOrder {
		t.Errorf("unexpected first result %+v", results[0])
	}
	if results[1].Winner.ModName != "m1" || results[1].Reason != ReasonModOverride {
		t.Errorf("unexpected second result %+v", results[1])
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	d1 := definition.New("t1", "common/test1.txt", "fake1")
	d2 := definition.New("t1", "common/test1.txt", "fake2")
	isPatch := func(m definition.ModName) bool { return m == "modcurator_fake" }

	tests := []struct {
		name   string
		def    definition.Definition
		result Result
		want   string
	}{
		{name: "order", def: d1, result: Result{Winner: d1, Reason: ReasonModOrder}, want: "fake1 - t1 Order"},
		{name: "override", def: d1, result: Result{Winner: d1, Reason: ReasonModOverride}, want: "fake1 - t1 Override"},
		{name: "fios", def: d1, result: Result{Winner: d1, Reason: ReasonFIOS}, want: "fake1 - t1 FIOS"},
		{name: "lios", def: d1, result: Result{Winner: d1, Reason: ReasonLIOS}, want: "fake1 - t1 LIOS"},
		{name: "loser", def: d2, result: Result{Winner: d1, Reason: ReasonModOrder}, want: "fake2 - t1"},
		{name: "no reason", def: d1, result: Result{Winner: d1, Reason: ReasonNone}, want: "fake1 - t1"},
		{
			name:   "patch mod",
			def:    definition.New("t1", "common/test1.txt", "modcurator_fake"),
			result: Result{Winner: definition.New("t1", "common/test1.txt", "modcurator_fake"), Reason: ReasonModOrder},
			want:   "modcurator_fake - t1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Describe(tt.def, tt.result, isPatch); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	if m, err := ParseMode(" LIOS "); err != nil || m != ModeLIOS {
		t.Errorf("ParseMode(LIOS) = %q, %v", m, err)
	}
	if _, err := ParseMode("order"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
	if ModeFIOS.Reason() != ReasonFIOS || ModeLIOS.Reason() != ReasonLIOS {
		t.Error("unexpected mode reasons")
	}
	if ReasonModOverride.String() != "mod_override" || Reason(42).String() != "reason(42)" {
		t.Error("unexpected reason strings")
	}
}
