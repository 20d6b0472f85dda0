package authsvc

// DummyHash exposes the hash unknown usernames are compared against.
func DummyHash(s *AuthService) []byte {
	return s.dummyHash
}
