package boltidentity

func init() {
	// Use very low scrypt parameters to speed tests up.
	scryptN = 16
	scryptR = 8
	scryptP = 1
}
