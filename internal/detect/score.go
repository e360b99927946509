package detect

import (
	"image"
	"math"
)

// Score returns the minimum normalized squared difference between tmpl and
// every same-sized window of captured. Lower is better; 0 is a perfect
// match. When tmpl does not fit inside captured the score is 1.
//
// For each offset (x, y):
//
//	R(x,y) = Σ(T - I)² / sqrt(ΣT² · ΣI²)
//
// A zero denominator yields 1, so all-black regions never match.
func Score(captured, tmpl *image.Gray) float64 {
	cw, ch := captured.Rect.Dx(), captured.Rect.Dy()
	tw, th := tmpl.Rect.Dx(), tmpl.Rect.Dy()
	if tw == 0 || th == 0 || tw > cw || th > ch {
		return 1
	}

	var tSq float64
	for y := 0; y < th; y++ {
		row := tmpl.Pix[y*tmpl.Stride : y*tmpl.Stride+tw]
		for _, v := range row {
			f := float64(v)
			tSq += f * f
		}
	}

	best := math.Inf(1)
	for oy := 0; oy <= ch-th; oy++ {
		for ox := 0; ox <= cw-tw; ox++ {
			var diff, iSq float64
			for y := 0; y < th; y++ {
				trow := tmpl.Pix[y*tmpl.Stride : y*tmpl.Stride+tw]
				start := (oy+y)*captured.Stride + ox
				irow := captured.Pix[start : start+tw]
				for x, tv := range trow {
					iv := float64(irow[x])
					d := float64(tv) - iv
					diff += d * d
					iSq += iv * iv
				}
			}
			r := normalize(diff, tSq, iSq)
			if r < best {
				best = r
				if best == 0 {
					return 0
				}
			}
		}
	}
	return best
}

func normalize(diff, tSq, iSq float64) float64 {
	den := math.Sqrt(tSq * iSq)
	if diff < den {
		return diff / den
	}
	return 1
}
