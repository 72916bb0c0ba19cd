package physics

import (
	"math"

	"github.com/kilianp07/predsubmit/core/helper"
	"github.com/kilianp07/predsubmit/core/model"
)

// kinematics is the state of an agent at the current sample. Unknown
// derivatives are zero.
type kinematics struct {
	x, y    float64
	vx, vy  float64
	ax, ay  float64
	speed   float64
	yaw     float64
	accel   float64
	yawRate float64
}

func kinematicsFromTokens(h *helper.Helper, instance, sample string) (kinematics, error) {
	ann, err := h.SampleAnnotation(instance, sample)
	if err != nil {
		return kinematics{}, err
	}
	speed, err := h.VelocityForAgent(instance, sample)
	if err != nil {
		return kinematics{}, err
	}
	accel, err := h.AccelerationForAgent(instance, sample)
	if err != nil {
		return kinematics{}, err
	}
	yawRate, err := h.HeadingChangeRateForAgent(instance, sample)
	if err != nil {
		return kinematics{}, err
	}
	speed, accel, yawRate = zeroNaN(speed), zeroNaN(accel), zeroNaN(yawRate)

	yaw := helper.QuaternionYaw(ann.Rotation)
	hx, hy := math.Cos(yaw), math.Sin(yaw)
	return kinematics{
		x: ann.Translation[0], y: ann.Translation[1],
		vx: speed * hx, vy: speed * hy,
		ax: accel * hx, ay: accel * hy,
		speed: speed, yaw: yaw, accel: accel, yawRate: yawRate,
	}, nil
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// horizon returns the number of steps and the step length in seconds.
func horizon(seconds, sampledAt int) (int, float64) {
	return seconds * sampledAt, 1 / float64(sampledAt)
}

func constantVelocityHeading(k kinematics, seconds, sampledAt int) model.Trajectory {
	n, dt := horizon(seconds, sampledAt)
	out := make(model.Trajectory, n)
	for i := range out {
		t := float64(i+1) * dt
		out[i] = model.Point{k.x + t*k.vx, k.y + t*k.vy}
	}
	return out
}

func constantAccelerationAndHeading(k kinematics, seconds, sampledAt int) model.Trajectory {
	n, dt := horizon(seconds, sampledAt)
	out := make(model.Trajectory, n)
	for i := range out {
		t := float64(i+1) * dt
		half := 0.5 * t * t
		out[i] = model.Point{k.x + t*k.vx + half*k.ax, k.y + t*k.vy + half*k.ay}
	}
	return out
}

func constantSpeedAndYawRate(k kinematics, seconds, sampledAt int) model.Trajectory {
	n, dt := horizon(seconds, sampledAt)
	out := make(model.Trajectory, n)
	x, y, yaw := k.x, k.y, k.yaw
	step := k.speed * dt
	for i := range out {
		x += step * math.Cos(yaw)
		y += step * math.Sin(yaw)
		out[i] = model.Point{x, y}
		yaw += k.yawRate * dt
	}
	return out
}

func constantMagnitudeAccelAndYawRate(k kinematics, seconds, sampledAt int) model.Trajectory {
	n, dt := horizon(seconds, sampledAt)
	out := make(model.Trajectory, n)
	x, y, yaw, speed := k.x, k.y, k.yaw, k.speed
	for i := range out {
		x += speed * dt * math.Cos(yaw)
		y += speed * dt * math.Sin(yaw)
		out[i] = model.Point{x, y}
		speed += k.accel * dt
		yaw += k.yawRate * dt
	}
	return out
}
