package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/brawler/pool"
)

// LoadSpec reads and unmarshals one yaml spec, preferring a file on disk
// over the embedded copy so specs stay editable while the game runs.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// specFilename appends .yaml to bare spec names.
func specFilename(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return name + ".yaml"
}

type FighterSpec struct {
	Name          string        `yaml:"name"`
	MaxHealth     float64       `yaml:"max_health"`
	MoveSpeed     float64       `yaml:"move_speed"`
	JumpSpeed     float64       `yaml:"jump_speed"`
	AirControl    float64       `yaml:"air_control"`
	StunFrames    int           `yaml:"stun_frames"`
	IFramesOnHit  int           `yaml:"iframes_on_hit"`
	RespawnFrames int           `yaml:"respawn_frames"`
	Ability       string        `yaml:"ability"`
	Behavior      string        `yaml:"behavior"`
	Attack        AttackSpec    `yaml:"attack"`
	Collider      ColliderSpec  `yaml:"collider"`
	Sprite        SpriteSpec    `yaml:"sprite"`
	Hurtboxes     []HurtboxSpec `yaml:"hurtboxes"`
}

func LoadFighterSpec(name string) (*FighterSpec, error) {
	spec, err := LoadSpec[FighterSpec](specFilename(name))
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: fighter %s: %w", name, err)
	}
	return &spec, nil
}

func (s *FighterSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("missing name")
	}
	if s.MaxHealth <= 0 {
		return fmt.Errorf("max_health must be positive, got %v", s.MaxHealth)
	}
	if s.MoveSpeed <= 0 || s.JumpSpeed <= 0 {
		return fmt.Errorf("move_speed and jump_speed must be positive")
	}
	if s.Collider.Width <= 0 || s.Collider.Height <= 0 {
		return fmt.Errorf("collider must have positive size")
	}
	if s.Attack.Frames > 0 && (s.Attack.ActiveFrom > s.Attack.ActiveTo || s.Attack.ActiveTo > s.Attack.Frames) {
		return fmt.Errorf("attack window [%d,%d] outside swing of %d frames",
			s.Attack.ActiveFrom, s.Attack.ActiveTo, s.Attack.Frames)
	}
	return nil
}

type AttackSpec struct {
	Frames     int     `yaml:"frames"`
	ActiveFrom int     `yaml:"active_from"`
	ActiveTo   int     `yaml:"active_to"`
	Reach      float64 `yaml:"reach"`
	Height     float64 `yaml:"height"`
	Damage     float64 `yaml:"damage"`
}

type ColliderSpec struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Mass       float64 `yaml:"mass"`
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`
}

type SpriteSpec struct {
	Width  float64    `yaml:"width"`
	Height float64    `yaml:"height"`
	Color  *YAMLColor `yaml:"color"`
	Layer  int        `yaml:"layer"`
}

type HurtboxSpec struct {
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
}

type ProjectileSpec struct {
	Name     string     `yaml:"name"`
	Speed    float64    `yaml:"speed"`
	Damage   float64    `yaml:"damage"`
	Radius   float64    `yaml:"radius"`
	Lifetime float64    `yaml:"lifetime_seconds"`
	Gravity  float64    `yaml:"gravity_factor"`
	Color    *YAMLColor `yaml:"color"`
	Pool     PoolSpec   `yaml:"pool"`
}

func LoadProjectileSpec(name string) (*ProjectileSpec, error) {
	spec, err := LoadSpec[ProjectileSpec](specFilename(name))
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: projectile %s: %w", name, err)
	}
	return &spec, nil
}

func (s *ProjectileSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("missing name")
	}
	if s.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %v", s.Speed)
	}
	if s.Radius <= 0 {
		return fmt.Errorf("radius must be positive, got %v", s.Radius)
	}
	if s.Lifetime <= 0 {
		return fmt.Errorf("lifetime_seconds must be positive, got %v", s.Lifetime)
	}
	if _, err := s.Pool.Policy(); err != nil {
		return err
	}
	return nil
}

// PoolSpec sizes the pool backing one projectile archetype.
type PoolSpec struct {
	InitialSize int    `yaml:"initial_size"`
	AllowGrowth bool   `yaml:"allow_growth"`
	MaxSize     int    `yaml:"max_size"`
	Exhaustion  string `yaml:"exhaustion"`
}

// Policy maps the yaml exhaustion keyword onto the pool policy. An empty
// keyword means fail.
func (s PoolSpec) Policy() (pool.ExhaustionPolicy, error) {
	switch s.Exhaustion {
	case "", "fail":
		return pool.ExhaustFail, nil
	case "force_allocate":
		return pool.ExhaustForceAllocate, nil
	default:
		return pool.ExhaustFail, fmt.Errorf("unknown exhaustion policy %q", s.Exhaustion)
	}
}

// Config builds the pool configuration for this spec.
func (s PoolSpec) Config() (pool.Config, error) {
	policy, err := s.Policy()
	if err != nil {
		return pool.Config{}, err
	}
	return pool.Config{
		InitialSize: s.InitialSize,
		AllowGrowth: s.AllowGrowth,
		MaxSize:     s.MaxSize,
		Exhaustion:  policy,
	}, nil
}

type AbilitySpec struct {
	Name           string `yaml:"name"`
	Script         string `yaml:"script"`
	CastFrames     int    `yaml:"cast_frames"`
	CastPoint      int    `yaml:"cast_point"`
	CooldownFrames int    `yaml:"cooldown_frames"`
}

func LoadAbilitySpec(name string) (*AbilitySpec, error) {
	spec, err := LoadSpec[AbilitySpec](specFilename(name))
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: ability %s: %w", name, err)
	}
	return &spec, nil
}

func (s *AbilitySpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("missing name")
	}
	if s.Script == "" {
		return fmt.Errorf("missing script")
	}
	if s.CastFrames <= 0 {
		return fmt.Errorf("cast_frames must be positive, got %d", s.CastFrames)
	}
	if s.CastPoint < 0 || s.CastPoint > s.CastFrames {
		return fmt.Errorf("cast_point %d outside cast of %d frames", s.CastPoint, s.CastFrames)
	}
	return nil
}

type ArenaSpec struct {
	Name    string      `yaml:"name"`
	Width   float64     `yaml:"width"`
	Height  float64     `yaml:"height"`
	Gravity float64     `yaml:"gravity"`
	Spawns  []PointSpec `yaml:"spawns"`
	Walls   []WallSpec  `yaml:"walls"`
}

func LoadArenaSpec(name string) (*ArenaSpec, error) {
	spec, err := LoadSpec[ArenaSpec](specFilename(name))
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: arena %s: %w", name, err)
	}
	return &spec, nil
}

func (s *ArenaSpec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("arena must have positive size")
	}
	if len(s.Spawns) == 0 {
		return fmt.Errorf("arena needs at least one spawn point")
	}
	return nil
}

type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// WallSpec is a solid rectangle, center anchored like every transform.
type WallSpec struct {
	X      float64    `yaml:"x"`
	Y      float64    `yaml:"y"`
	Width  float64    `yaml:"width"`
	Height float64    `yaml:"height"`
	Color  *YAMLColor `yaml:"color"`
}

type CameraSpec struct {
	Name       string  `yaml:"name"`
	Target     string  `yaml:"target"`
	Zoom       float64 `yaml:"zoom"`
	Smoothness float64 `yaml:"smoothness"`
}

func LoadCameraSpec() (*CameraSpec, error) {
	spec, err := LoadSpec[CameraSpec]("camera.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// BehaviorSpec is the yaml description of an AI behavior machine: sensor
// ranges plus states built from named actions and an event-driven
// transition table.
type BehaviorSpec struct {
	Name        string                         `yaml:"name"`
	Sight       float64                        `yaml:"sight"`
	Reach       float64                        `yaml:"reach"`
	Initial     string                         `yaml:"initial"`
	States      map[string]BehaviorStateSpec   `yaml:"states"`
	Transitions map[string][]map[string]string `yaml:"transitions"`
}

type BehaviorStateSpec struct {
	OnEnter []map[string]any `yaml:"on_enter"`
	While   []map[string]any `yaml:"while"`
	OnExit  []map[string]any `yaml:"on_exit"`
}

func LoadBehaviorSpec(name string) (*BehaviorSpec, error) {
	spec, err := LoadSpec[BehaviorSpec](specFilename(name))
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: behavior %s: %w", name, err)
	}
	return &spec, nil
}

func (s *BehaviorSpec) Validate() error {
	if s.Initial == "" {
		return fmt.Errorf("missing initial state")
	}
	if len(s.States) == 0 {
		return fmt.Errorf("no states defined")
	}
	if _, ok := s.States[s.Initial]; !ok {
		return fmt.Errorf("initial state %q not defined", s.Initial)
	}
	for from, rules := range s.Transitions {
		if _, ok := s.States[from]; !ok {
			return fmt.Errorf("transitions reference unknown state %q", from)
		}
		for _, rule := range rules {
			for event, to := range rule {
				if _, ok := s.States[to]; !ok {
					return fmt.Errorf("transition %q -> %q on %q targets unknown state", from, to, event)
				}
			}
		}
	}
	return nil
}

type YAMLColor struct {
	color.Color
}

// NRGBA returns the parsed color, or the fallback when the spec omitted
// one.
func (c *YAMLColor) NRGBA(fallback color.NRGBA) color.NRGBA {
	if c == nil || c.Color == nil {
		return fallback
	}
	if n, ok := c.Color.(color.NRGBA); ok {
		return n
	}
	r, g, b, a := c.Color.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
