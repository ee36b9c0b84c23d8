package service

import "math"

// Normalize aplica la convención lineal usada por todo el pipeline:
// 0 si x<=min, 1 si x>=max, lineal en el medio. Entradas no numéricas
// normalizan a 0 en vez de propagar NaN.
func Normalize(x, min, max float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	if max <= min {
		return 0
	}
	if x <= min {
		return 0
	}
	if x >= max {
		return 1
	}
	return (x - min) / (max - min)
}

// Clamp01 recorta un valor al rango [0,1] antes de persistirlo.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clamp recorta v al rango [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
