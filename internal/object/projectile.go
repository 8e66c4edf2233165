package object

import (
	"math"
)

// ProjectileSpeed is the muzzle speed of projectiles in units per second.
const ProjectileSpeed = 550.0

// ProjectileLifetime is how long projectiles last before disappearing.
const ProjectileLifetime = 1.1

// Projectile is a shot fired by the craft. It flies straight and expires.
type Projectile struct {
	Body
	Lifetime float64 // Seconds remaining
	Active   bool    // False once expired or spent on a hit
}

// NewProjectile creates a projectile at (x, y) travelling along angle.
func NewProjectile(x, y, angle float64) *Projectile {
	return &Projectile{
		Body: Body{
			X:  x,
			Y:  y,
			VX: math.Cos(angle) * ProjectileSpeed,
			VY: math.Sin(angle) * ProjectileSpeed,
		},
		Lifetime: ProjectileLifetime,
		Active:   true,
	}
}

// Update moves the projectile and burns down its lifetime. An expired
// projectile is only flagged inactive; the owner removes it after the pass.
func (p *Projectile) Update(dt float64, f Field) {
	if !p.Active {
		return
	}

	p.Integrate(dt)
	p.Lifetime -= dt
	if p.Lifetime <= 0 {
		p.Active = false
		return
	}

	p.WrapFlush(f)
}

// Deactivate marks the projectile as spent.
func (p *Projectile) Deactivate() {
	p.Active = false
}
