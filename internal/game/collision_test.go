package game

import (
	"testing"

	"github.com/tomz197/astrds/internal/object"
	"github.com/tomz197/astrds/internal/physics"
)

var testField = object.Field{Width: 800, Height: 600}

// still returns an obstacle at rest with a tier's stock radius and points.
func still(x, y float64, tier object.Tier) *object.Obstacle {
	return &object.Obstacle{
		Body:   object.Body{X: x, Y: y},
		Tier:   tier,
		Radius: tier.Radius(),
		Points: tier.Points(),
	}
}

func shot(x, y float64) *object.Projectile {
	return object.NewProjectile(x, y, 0)
}

func TestDetectorProjectileBoundaryIsStrict(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		want bool
	}{
		{"inside by one", 449, true},
		{"on the rim", 450, false},
		{"outside by one", 451, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(testField)
			obstacles := []*object.Obstacle{still(400, 300, object.TierLarge)}
			p := shot(tt.x, 300)

			res := d.Projectiles([]*object.Projectile{p}, obstacles, object.NewRand(1))
			if got := len(res.Hits) == 1; got != tt.want {
				t.Fatalf("hit = %v, want %v", got, tt.want)
			}
			if p.Active == tt.want {
				t.Errorf("projectile active = %v after hit = %v", p.Active, tt.want)
			}
		})
	}
}

func TestDetectorFirstMatchInListOrder(t *testing.T) {
	d := NewDetector(testField)
	a := still(100, 100, object.TierSmall)
	b := still(105, 100, object.TierSmall)
	obstacles := []*object.Obstacle{a, b}

	p1, p2, p3 := shot(102, 100), shot(102, 100), shot(102, 100)
	res := d.Projectiles([]*object.Projectile{p1, p2, p3}, obstacles, object.NewRand(1))

	if len(res.Hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(res.Hits))
	}
	if res.Hits[0].Obstacle != a || res.Hits[0].Projectile != p1 {
		t.Error("first projectile must take the first obstacle in list order")
	}
	if res.Hits[1].Obstacle != b || res.Hits[1].Projectile != p2 {
		t.Error("second projectile must skip the destroyed obstacle")
	}
	if !p3.Active {
		t.Error("third projectile has nothing left to hit and must stay active")
	}
	if len(res.Obstacles) != 0 {
		t.Errorf("small obstacles leave no fragments, got %d obstacles", len(res.Obstacles))
	}
	if res.Points != 200 {
		t.Errorf("points = %d, want 200", res.Points)
	}
}

func TestDetectorAppendsFragmentsAfterSurvivors(t *testing.T) {
	d := NewDetector(testField)
	hit := still(200, 200, object.TierLarge)
	survivor := still(600, 400, object.TierMedium)

	res := d.Projectiles([]*object.Projectile{shot(200, 200)}, []*object.Obstacle{hit, survivor}, object.NewRand(3))

	if len(res.Obstacles) != 3 {
		t.Fatalf("got %d obstacles, want 3", len(res.Obstacles))
	}
	if res.Obstacles[0] != survivor {
		t.Error("survivors must keep their order ahead of fragments")
	}
	for _, frag := range res.Obstacles[1:] {
		if frag.Tier != object.TierMedium {
			t.Errorf("fragment tier = %v, want medium", frag.Tier)
		}
		if frag.X != 200 || frag.Y != 200 {
			t.Errorf("fragment at (%f,%f), want (200,200)", frag.X, frag.Y)
		}
	}
	if res.Points != object.TierLarge.Points() {
		t.Errorf("points = %d, want %d", res.Points, object.TierLarge.Points())
	}
}

func TestDetectorIgnoresInactiveProjectiles(t *testing.T) {
	d := NewDetector(testField)
	p := shot(400, 300)
	p.Deactivate()
	obstacles := []*object.Obstacle{still(400, 300, object.TierLarge)}

	res := d.Projectiles([]*object.Projectile{p}, obstacles, object.NewRand(1))
	if len(res.Hits) != 0 || len(res.Obstacles) != 1 {
		t.Fatal("inactive projectile must not hit anything")
	}
}

func TestDetectorCraft(t *testing.T) {
	// Craft radius 12 + large radius 50.
	tests := []struct {
		name       string
		dx         float64
		invincible bool
		dead       bool
		want       bool
	}{
		{"overlap", 61, false, false, true},
		{"touching", 62, false, false, false},
		{"apart", 63, false, false, false},
		{"invincible", 0, true, false, false},
		{"dead", 0, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(testField)
			c := object.NewCraft(400, 300)
			c.Invincible = tt.invincible
			c.InvincibleTimer = 1
			c.Dead = tt.dead
			obstacles := []*object.Obstacle{still(400+tt.dx, 300, object.TierLarge)}

			_, hit := d.Craft(c, obstacles)
			if hit != tt.want {
				t.Errorf("hit = %v, want %v", hit, tt.want)
			}
		})
	}
}

func TestDetectorCraftReportsFirstObstacle(t *testing.T) {
	d := NewDetector(testField)
	c := object.NewCraft(400, 300)
	obstacles := []*object.Obstacle{
		still(100, 100, object.TierLarge),
		still(410, 300, object.TierSmall),
		still(400, 300, object.TierLarge),
	}
	idx, hit := d.Craft(c, obstacles)
	if !hit || idx != 1 {
		t.Fatalf("Craft() = (%d,%v), want (1,true)", idx, hit)
	}
	if _, hit := d.Craft(nil, obstacles); hit {
		t.Error("nil craft must never collide")
	}
}

// linearHits resolves hits with a plain scan and returns the obstacle index
// taken by each projectile, or -1.
func linearHits(projectiles []*object.Projectile, obstacles []*object.Obstacle) []int {
	destroyed := make([]bool, len(obstacles))
	out := make([]int, len(projectiles))
	for pi, p := range projectiles {
		out[pi] = -1
		if !p.Active {
			continue
		}
		for i, o := range obstacles {
			if destroyed[i] {
				continue
			}
			if physics.PointInCircle(p.X, p.Y, o.X, o.Y, o.Radius) {
				destroyed[i] = true
				out[pi] = i
				break
			}
		}
	}
	return out
}

func TestDetectorMatchesLinearScan(t *testing.T) {
	rng := object.NewRand(42)
	d := NewDetector(testField)

	for round := 0; round < 50; round++ {
		obstacles := make([]*object.Obstacle, 30)
		for i := range obstacles {
			tier := object.Tier(rng.Intn(3))
			obstacles[i] = still(rng.Float64()*900-50, rng.Float64()*700-50, tier)
		}
		projectiles := make([]*object.Projectile, 40)
		for i := range projectiles {
			projectiles[i] = shot(rng.Float64()*800, rng.Float64()*600)
		}

		want := linearHits(projectiles, obstacles)
		index := make(map[*object.Obstacle]int, len(obstacles))
		for i, o := range obstacles {
			index[o] = i
		}

		res := d.Projectiles(projectiles, append([]*object.Obstacle(nil), obstacles...), rng)

		got := make([]int, len(projectiles))
		for i := range got {
			got[i] = -1
		}
		pos := make(map[*object.Projectile]int, len(projectiles))
		for i, p := range projectiles {
			pos[p] = i
		}
		for _, h := range res.Hits {
			got[pos[h.Projectile]] = index[h.Obstacle]
		}

		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("round %d projectile %d: grid hit %d, linear hit %d", round, i, got[i], want[i])
			}
		}
	}
}
