package tile

import "iter"

// Range returns an iterator over all tiles of the given zoom level in row-major order.
func Range(z uint32) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		n := Count(z)
		for y := range n {
			for x := range n {
				if !yield(ID{X: x, Y: y, Z: z}) {
					return
				}
			}
		}
	}
}
