package scoring

// AtLeast matches when the numeric factor is >= x.
func AtLeast(factor string, x float64) Predicate {
	return func(fs FactorSet) bool {
		n, ok := fs.Num(factor)
		return ok && n >= x
	}
}

// Below matches when the numeric factor is < x.
func Below(factor string, x float64) Predicate {
	return func(fs FactorSet) bool {
		n, ok := fs.Num(factor)
		return ok && n < x
	}
}

// Between matches lo <= factor < hi.
func Between(factor string, lo, hi float64) Predicate {
	return func(fs FactorSet) bool {
		n, ok := fs.Num(factor)
		return ok && n >= lo && n < hi
	}
}

// True matches a boolean factor set to true.
func True(factor string) Predicate {
	return func(fs FactorSet) bool { return fs.IsTrue(factor) }
}

// Equals matches a categorical factor with the given value.
func Equals(factor, want string) Predicate {
	return func(fs FactorSet) bool { return fs.Is(factor, want) }
}

// OneOf matches a categorical factor with any of the given values.
func OneOf(factor string, want ...string) Predicate {
	return func(fs FactorSet) bool {
		for _, w := range want {
			if fs.Is(factor, w) {
				return true
			}
		}
		return false
	}
}

// And matches when every predicate matches.
func And(ps ...Predicate) Predicate {
	return func(fs FactorSet) bool {
		for _, p := range ps {
			if !p(fs) {
				return false
			}
		}
		return true
	}
}
