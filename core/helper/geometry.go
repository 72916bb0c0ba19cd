package helper

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/predsubmit/core/model"
)

// QuaternionYaw returns the yaw of a w, x, y, z quaternion, i.e. the angle of
// the rotated x axis in the xy plane.
func QuaternionYaw(q [4]float64) float64 {
	w, x, y, z := q[0], q[1], q[2], q[3]
	return math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
}

// AngleDiff returns the signed difference x - y wrapped into one period.
func AngleDiff(x, y, period float64) float64 {
	diff := floorMod(x-y+period/2, period) - period/2
	if diff > math.Pi {
		diff -= 2 * math.Pi
	}
	return diff
}

func floorMod(a, b float64) float64 {
	return a - b*math.Floor(a/b)
}

// angleOfRotation maps a yaw measured from the x axis to the rotation that
// makes the agent face the positive y axis.
func angleOfRotation(yaw float64) float64 {
	sign := 0.0
	switch {
	case yaw > 0:
		sign = -1
	case yaw < 0:
		sign = 1
	}
	return math.Pi/2 + sign*math.Abs(yaw)
}

// GlobalToLocal expresses global xy points in the frame of an agent located
// at translation with the given rotation. The agent faces +y in its frame.
func GlobalToLocal(points model.Trajectory, translation [3]float64, rotation [4]float64) model.Trajectory {
	if len(points) == 0 {
		return model.Trajectory{}
	}
	theta := angleOfRotation(QuaternionYaw(rotation))
	c, s := math.Cos(theta), math.Sin(theta)
	rot := mat.NewDense(2, 2, []float64{c, -s, s, c})

	n := len(points)
	centered := mat.NewDense(2, n, nil)
	for i, p := range points {
		centered.Set(0, i, p[0]-translation[0])
		centered.Set(1, i, p[1]-translation[1])
	}
	var out mat.Dense
	out.Mul(rot, centered)

	res := make(model.Trajectory, n)
	for i := range res {
		res[i] = model.Point{out.At(0, i), out.At(1, i)}
	}
	return res
}
