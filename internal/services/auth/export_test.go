package services

const DummyPassword = dummyPassword

func DummyHash(s *AuthService) string { return s.dummyHash }
