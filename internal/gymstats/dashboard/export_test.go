package dashboard

// TrackedUsers is the number of users with a refresh still in flight.
func (s *Service) TrackedUsers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.generations)
}
