package jwtx

// Signer signs claims the caller has already built. The algorithm is fixed
// per deployment, verifiers never negotiate it.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// Issuer mints identity tokens for authenticated users. The lifetime belongs
// to the issuer, callers only name the user.
type Issuer interface {
	Issue(userID int64, username string) (string, error)
}
