package system

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"golang.design/x/clipboard"

	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
)

// DebugOverlaySystem renders match diagnostics (fighter states, pool stats,
// recent transitions) plus a wireframe of the physics space, and copies the
// same diagnostics as text to the system clipboard on request.
type DebugOverlaySystem struct {
	physics     *PhysicsSystem
	projectiles *ProjectileSystem
	log         *TransitionLogSystem

	clipboardOnce sync.Once
	clipboardOK   bool
}

func NewDebugOverlaySystem(physics *PhysicsSystem, projectiles *ProjectileSystem, transitions *TransitionLogSystem) *DebugOverlaySystem {
	return &DebugOverlaySystem{
		physics:     physics,
		projectiles: projectiles,
		log:         transitions,
	}
}

func (d *DebugOverlaySystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if d == nil || w == nil || screen == nil {
		return
	}

	if d.physics != nil && d.physics.Space() != nil {
		drawSpaceWireframe(d.physics.Space(), w, screen)
	}

	ebitenutil.DebugPrintAt(screen, d.Diagnostics(w), 10, 30)
}

// CopyDiagnostics puts the current diagnostics text on the system clipboard.
// Clipboard access can be unavailable (headless X, missing cgo); the first
// failure is logged and later calls become no-ops.
func (d *DebugOverlaySystem) CopyDiagnostics(w *ecs.World) {
	if d == nil || w == nil {
		return
	}
	d.clipboardOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			log.Printf("debug overlay: clipboard unavailable: %v", err)
			return
		}
		d.clipboardOK = true
	})
	if !d.clipboardOK {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(d.Diagnostics(w)))
	log.Println("debug overlay: diagnostics copied to clipboard")
}

// Diagnostics renders the overlay text: one line per fighter, one per
// projectile pool, then the most recent transitions.
func (d *DebugOverlaySystem) Diagnostics(w *ecs.World) string {
	var b strings.Builder

	fmt.Fprintf(&b, "entities: %d\n", w.EntityCount())

	fighters := w.Query(component.FighterMachineComponent.Kind())
	sort.Slice(fighters, func(i, j int) bool { return fighters[i] < fighters[j] })
	for _, e := range fighters {
		fm, ok := ecs.Get(w, e, component.FighterMachineComponent)
		if !ok || fm.Machine == nil {
			continue
		}
		line := fmt.Sprintf("%s: %s", entityLabel(w, e), fm.Machine.Current())
		if prev := fm.Machine.Previous(); prev != "" {
			line += fmt.Sprintf(" (prev %s)", prev)
		}
		if health, ok := ecs.Get(w, e, component.HealthComponent); ok && health != nil {
			line += fmt.Sprintf("  hp %.0f/%.0f", health.Current, health.Max)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if d.projectiles != nil {
		stats := d.projectiles.Stats()
		names := make([]string, 0, len(stats))
		for name := range stats {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "pool %s: %s\n", name, stats[name])
		}
	}

	if d.log != nil {
		for _, line := range d.log.Tail(8) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// drawSpaceWireframe traces every shape in the physics space through the
// camera transform.
func drawSpaceWireframe(space *cp.Space, w *ecs.World, screen *ebiten.Image) {
	camX, camY, zoom := debugCameraTransform(w)
	bounds := screen.Bounds()
	drawer := &physicsDebugDrawer{
		screen: screen,
		camX:   camX,
		camY:   camY,
		zoom:   zoom,
		halfW:  float64(bounds.Dx()) / 2,
		halfH:  float64(bounds.Dy()) / 2,
	}
	cp.DrawSpace(space, drawer)
}

type physicsDebugDrawer struct {
	screen *ebiten.Image
	camX   float64
	camY   float64
	zoom   float64
	halfW  float64
	halfH  float64
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: pos.X + math.Cos(t)*radius, Y: pos.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, outline)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, outline)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], outline)
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	half := size / 2
	d.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, fill)
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, fill)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape != nil && shape.Sensor() {
		return cp.FColor{R: 0.9, G: 0.8, B: 0.1, A: 0.5}
	}
	return cp.FColor{R: 0.1, G: 0.6, B: 0.1, A: 0.5}
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, c cp.FColor) {
	x1, y1 := d.toScreen(a)
	x2, y2 := d.toScreen(b)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, 1, debugNRGBA(c), false)
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector, c cp.FColor) {
	if len(verts) == 0 {
		return
	}
	for i := 0; i < len(verts); i++ {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], c)
	}
}

func (d *physicsDebugDrawer) toScreen(v cp.Vector) (float32, float32) {
	return float32((v.X-d.camX)*d.zoom + d.halfW), float32((v.Y-d.camY)*d.zoom + d.halfH)
}

func debugNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func debugCameraTransform(w *ecs.World) (float64, float64, float64) {
	camX, camY := 0.0, 0.0
	zoom := 1.0
	camEntity, ok := w.First(component.CameraComponent.Kind())
	if !ok {
		return camX, camY, zoom
	}
	if camTransform, ok := ecs.Get(w, camEntity, component.TransformComponent); ok {
		camX = camTransform.X
		camY = camTransform.Y
	}
	if camComp, ok := ecs.Get(w, camEntity, component.CameraComponent); ok && camComp.Zoom > 0 {
		zoom = camComp.Zoom
	}
	return camX, camY, zoom
}
