package assignment

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// solveMunkres computes a minimum-cost perfect matching on a square cost
// matrix using the Hungarian algorithm with row/column potentials
// (O(n³)). Returns assigned column per row.
func solveMunkres(cost *mat.Dense) []int {
	n, _ := cost.Dims()
	if n == 0 {
		return nil
	}

	// Potentials and matching use 1-based indexing; index 0 is the
	// virtual unmatched column.
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	rowForCol := make([]int, n+1)
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		rowForCol[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}

		// Grow an alternating tree until a free column is reached.
		for {
			used[j0] = true
			i0 := rowForCol[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost.At(i0-1, j-1) - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[rowForCol[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if rowForCol[j0] == 0 {
				break
			}
		}

		// Augment along the found path.
		for j0 != 0 {
			j1 := way[j0]
			rowForCol[j0] = rowForCol[j1]
			j0 = j1
		}
	}

	colForRow := make([]int, n)
	for j := 1; j <= n; j++ {
		if rowForCol[j] > 0 {
			colForRow[rowForCol[j]-1] = j - 1
		}
	}
	return colForRow
}
