package prefabs

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/brawler/pool"
)

func TestSpecFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare name", in: "brawler", want: "brawler.yaml"},
		{name: "already yaml", in: "brawler.yaml", want: "brawler.yaml"},
		{name: "other extension", in: "notes.yml", want: "notes.yml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := specFilename(tt.in); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEmbeddedFighterSpecs(t *testing.T) {
	brawler, err := LoadFighterSpec("brawler")
	if err != nil {
		t.Fatalf("load brawler: %v", err)
	}
	if brawler.MaxHealth != 100 || brawler.Ability != "volley" {
		t.Fatalf("unexpected brawler spec: %+v", brawler)
	}
	if brawler.Attack.ActiveFrom != 6 || brawler.Attack.ActiveTo != 12 || brawler.Attack.Frames != 22 {
		t.Fatalf("unexpected brawler attack window: %+v", brawler.Attack)
	}
	if len(brawler.Hurtboxes) != 1 {
		t.Fatalf("expected one hurtbox, got %d", len(brawler.Hurtboxes))
	}

	dummy, err := LoadFighterSpec("dummy")
	if err != nil {
		t.Fatalf("load dummy: %v", err)
	}
	if dummy.Behavior != "aggressor" || dummy.Ability != "nova" {
		t.Fatalf("unexpected dummy spec: %+v", dummy)
	}
}

func TestEmbeddedProjectileSpecs(t *testing.T) {
	bolt, err := LoadProjectileSpec("bolt")
	if err != nil {
		t.Fatalf("load bolt: %v", err)
	}
	if bolt.Speed != 540 || bolt.Pool.InitialSize != 12 || bolt.Pool.AllowGrowth {
		t.Fatalf("unexpected bolt spec: %+v", bolt)
	}
	if policy, err := bolt.Pool.Policy(); err != nil || policy != pool.ExhaustFail {
		t.Fatalf("expected fail policy, got %v, %v", policy, err)
	}

	ember, err := LoadProjectileSpec("ember")
	if err != nil {
		t.Fatalf("load ember: %v", err)
	}
	if !ember.Pool.AllowGrowth || ember.Pool.MaxSize != 10 {
		t.Fatalf("unexpected ember pool: %+v", ember.Pool)
	}
	if policy, err := ember.Pool.Policy(); err != nil || policy != pool.ExhaustForceAllocate {
		t.Fatalf("expected force_allocate policy, got %v, %v", policy, err)
	}
	if ember.Gravity != 0.35 {
		t.Fatalf("expected gravity factor 0.35, got %v", ember.Gravity)
	}
}

func TestEmbeddedAbilityAndArenaSpecs(t *testing.T) {
	volley, err := LoadAbilitySpec("volley")
	if err != nil {
		t.Fatalf("load volley: %v", err)
	}
	if volley.CastFrames != 26 || volley.CastPoint != 10 || volley.CooldownFrames != 90 {
		t.Fatalf("unexpected volley spec: %+v", volley)
	}

	nova, err := LoadAbilitySpec("nova")
	if err != nil {
		t.Fatalf("load nova: %v", err)
	}
	if nova.Script != "nova.tengo" {
		t.Fatalf("expected nova script, got %q", nova.Script)
	}

	arena, err := LoadArenaSpec("arena")
	if err != nil {
		t.Fatalf("load arena: %v", err)
	}
	if arena.Name != "courtyard" || len(arena.Spawns) != 2 || len(arena.Walls) != 5 {
		t.Fatalf("unexpected arena spec: %+v", arena)
	}

	camera, err := LoadCameraSpec()
	if err != nil {
		t.Fatalf("load camera: %v", err)
	}
	if camera.Target != "brawler" || camera.Zoom != 1.0 {
		t.Fatalf("unexpected camera spec: %+v", camera)
	}
}

func TestEmbeddedBehaviorSpec(t *testing.T) {
	spec, err := LoadBehaviorSpec("aggressor")
	if err != nil {
		t.Fatalf("load aggressor: %v", err)
	}
	if spec.Initial != "patrol" || len(spec.States) != 4 {
		t.Fatalf("unexpected aggressor spec: initial=%q states=%d", spec.Initial, len(spec.States))
	}
	if len(spec.Transitions["patrol"]) != 3 {
		t.Fatalf("expected 3 patrol rules, got %d", len(spec.Transitions["patrol"]))
	}
}

func TestLoadMissingSpec(t *testing.T) {
	if _, err := LoadFighterSpec("no_such_fighter"); err == nil {
		t.Fatalf("expected error for a missing spec")
	}
}

func TestFighterSpecValidate(t *testing.T) {
	valid := func() FighterSpec {
		return FighterSpec{
			Name:      "test",
			MaxHealth: 100,
			MoveSpeed: 200,
			JumpSpeed: 600,
			Collider:  ColliderSpec{Width: 32, Height: 48},
			Attack:    AttackSpec{Frames: 20, ActiveFrom: 4, ActiveTo: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*FighterSpec)
		wantErr bool
	}{
		{name: "valid", mutate: func(s *FighterSpec) {}, wantErr: false},
		{name: "no attack skips window check", mutate: func(s *FighterSpec) { s.Attack = AttackSpec{} }, wantErr: false},
		{name: "missing name", mutate: func(s *FighterSpec) { s.Name = "" }, wantErr: true},
		{name: "zero health", mutate: func(s *FighterSpec) { s.MaxHealth = 0 }, wantErr: true},
		{name: "zero move speed", mutate: func(s *FighterSpec) { s.MoveSpeed = 0 }, wantErr: true},
		{name: "zero collider", mutate: func(s *FighterSpec) { s.Collider.Width = 0 }, wantErr: true},
		{name: "window reversed", mutate: func(s *FighterSpec) { s.Attack.ActiveFrom = 12 }, wantErr: true},
		{name: "window past swing", mutate: func(s *FighterSpec) { s.Attack.ActiveTo = 30 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid()
			tt.mutate(&spec)
			err := spec.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected valid spec, got %v", err)
			}
		})
	}
}

func TestProjectileSpecValidate(t *testing.T) {
	valid := func() ProjectileSpec {
		return ProjectileSpec{Name: "test", Speed: 500, Radius: 4, Lifetime: 1}
	}

	tests := []struct {
		name    string
		mutate  func(*ProjectileSpec)
		wantErr bool
	}{
		{name: "valid", mutate: func(s *ProjectileSpec) {}, wantErr: false},
		{name: "missing name", mutate: func(s *ProjectileSpec) { s.Name = "" }, wantErr: true},
		{name: "zero speed", mutate: func(s *ProjectileSpec) { s.Speed = 0 }, wantErr: true},
		{name: "zero radius", mutate: func(s *ProjectileSpec) { s.Radius = 0 }, wantErr: true},
		{name: "zero lifetime", mutate: func(s *ProjectileSpec) { s.Lifetime = 0 }, wantErr: true},
		{name: "bad pool policy", mutate: func(s *ProjectileSpec) { s.Pool.Exhaustion = "leak" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid()
			tt.mutate(&spec)
			err := spec.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected valid spec, got %v", err)
			}
		})
	}
}

func TestAbilitySpecValidate(t *testing.T) {
	valid := func() AbilitySpec {
		return AbilitySpec{Name: "test", Script: "test.tengo", CastFrames: 20, CastPoint: 10}
	}

	tests := []struct {
		name    string
		mutate  func(*AbilitySpec)
		wantErr bool
	}{
		{name: "valid", mutate: func(s *AbilitySpec) {}, wantErr: false},
		{name: "cast point at end", mutate: func(s *AbilitySpec) { s.CastPoint = 20 }, wantErr: false},
		{name: "missing name", mutate: func(s *AbilitySpec) { s.Name = "" }, wantErr: true},
		{name: "missing script", mutate: func(s *AbilitySpec) { s.Script = "" }, wantErr: true},
		{name: "zero cast frames", mutate: func(s *AbilitySpec) { s.CastFrames = 0 }, wantErr: true},
		{name: "cast point past end", mutate: func(s *AbilitySpec) { s.CastPoint = 21 }, wantErr: true},
		{name: "negative cast point", mutate: func(s *AbilitySpec) { s.CastPoint = -1 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid()
			tt.mutate(&spec)
			err := spec.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected valid spec, got %v", err)
			}
		})
	}
}

func TestArenaSpecValidate(t *testing.T) {
	spec := ArenaSpec{Width: 100, Height: 100}
	if err := spec.Validate(); err == nil {
		t.Fatalf("expected error without spawns")
	}
	spec.Spawns = []PointSpec{{X: 10, Y: 10}}
	if err := spec.Validate(); err != nil {
		t.Fatalf("expected valid arena, got %v", err)
	}
	spec.Width = 0
	if err := spec.Validate(); err == nil {
		t.Fatalf("expected error for zero width")
	}
}

func TestBehaviorSpecValidate(t *testing.T) {
	valid := func() BehaviorSpec {
		return BehaviorSpec{
			Name:    "test",
			Initial: "a",
			States: map[string]BehaviorStateSpec{
				"a": {},
				"b": {},
			},
			Transitions: map[string][]map[string]string{
				"a": {{"go": "b"}},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*BehaviorSpec)
		wantErr string
	}{
		{name: "valid", mutate: func(s *BehaviorSpec) {}},
		{name: "missing initial", mutate: func(s *BehaviorSpec) { s.Initial = "" }, wantErr: "missing initial"},
		{name: "no states", mutate: func(s *BehaviorSpec) { s.States = nil }, wantErr: "no states"},
		{name: "unknown initial", mutate: func(s *BehaviorSpec) { s.Initial = "c" }, wantErr: "not defined"},
		{
			name:    "transition from unknown state",
			mutate:  func(s *BehaviorSpec) { s.Transitions["c"] = []map[string]string{{"go": "a"}} },
			wantErr: "unknown state",
		},
		{
			name:    "transition to unknown state",
			mutate:  func(s *BehaviorSpec) { s.Transitions["a"] = []map[string]string{{"go": "c"}} },
			wantErr: "targets unknown state",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid()
			tt.mutate(&spec)
			err := spec.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid spec, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPoolConfig(t *testing.T) {
	spec := PoolSpec{InitialSize: 4, AllowGrowth: true, MaxSize: 8, Exhaustion: "force_allocate"}
	cfg, err := spec.Config()
	if err != nil {
		t.Fatalf("expected config, got %v", err)
	}
	if cfg.InitialSize != 4 || !cfg.AllowGrowth || cfg.MaxSize != 8 || cfg.Exhaustion != pool.ExhaustForceAllocate {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := (PoolSpec{Exhaustion: "leak"}).Config(); err == nil {
		t.Fatalf("expected error for unknown exhaustion keyword")
	}
}

func TestColorParsing(t *testing.T) {
	type doc struct {
		Color *YAMLColor `yaml:"color"`
	}

	tests := []struct {
		name    string
		yaml    string
		want    color.NRGBA
		wantErr string
	}{
		{name: "six digit with hash", yaml: `color: "#4fa4f4"`, want: color.NRGBA{R: 0x4f, G: 0xa4, B: 0xf4, A: 0xff}},
		{name: "six digit bare", yaml: `color: "ffd24a"`, want: color.NRGBA{R: 0xff, G: 0xd2, B: 0x4a, A: 0xff}},
		{name: "eight digit", yaml: `color: "#11223344"`, want: color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}},
		{name: "wrong length", yaml: `color: "#fff"`, wantErr: "invalid color format"},
		{name: "not a scalar", yaml: "color:\n  - 1\n  - 2", wantErr: "color must be a string"},
		{name: "bad hex", yaml: `color: "zzzzzz"`, wantErr: "invalid syntax"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d doc
			err := yaml.Unmarshal([]byte(tt.yaml), &d)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := d.Color.NRGBA(color.NRGBA{})
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestColorFallback(t *testing.T) {
	fallback := color.NRGBA{R: 1, G: 2, B: 3, A: 4}
	var c *YAMLColor
	if got := c.NRGBA(fallback); got != fallback {
		t.Fatalf("expected fallback for nil color, got %+v", got)
	}
	empty := &YAMLColor{}
	if got := empty.NRGBA(fallback); got != fallback {
		t.Fatalf("expected fallback for unset color, got %+v", got)
	}
}

func TestLoadScript(t *testing.T) {
	data, err := LoadScript("volley.tengo")
	if err != nil {
		t.Fatalf("load volley script: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected script bytes")
	}

	// Path variants resolve to the same file.
	prefixed, err := LoadScript("scripts/volley.tengo")
	if err != nil {
		t.Fatalf("load prefixed script: %v", err)
	}
	if string(prefixed) != string(data) {
		t.Fatalf("expected identical bytes for path variants")
	}
}

func TestDiskCopyOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "prefabs"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	override := "name: bolt\nspeed: 900\ndamage: 1\nradius: 2\nlifetime_seconds: 0.5\n"
	if err := os.WriteFile(filepath.Join(dir, "prefabs", "bolt.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	t.Chdir(dir)

	spec, err := LoadProjectileSpec("bolt")
	if err != nil {
		t.Fatalf("load overridden bolt: %v", err)
	}
	if spec.Speed != 900 {
		t.Fatalf("expected the disk copy to win, got speed %v", spec.Speed)
	}

	if _, ok := ModTime("bolt.yaml"); !ok {
		t.Fatalf("expected a mod time for the on-disk copy")
	}
	if _, ok := ModTime("ember.yaml"); ok {
		t.Fatalf("expected no mod time without a disk copy")
	}
}
