package frame

// Scope collects release functions for objects acquired one after another and
// runs them in reverse acquisition order.
//
//	var s Scope
//	defer s.ReleaseOnError(&err)
//	a, err := create()
//	if err != nil {
//		return nil, err
//	}
//	s.Add(a.Destroy)
//	...
//	owner.scope = s.Move()
type Scope struct {
	releases []func()
}

func (s *Scope) Add(release func()) {
	s.releases = append(s.releases, release)
}

func (s *Scope) Len() int {
	return len(s.releases)
}

// Release runs every registered function, last first, and empties the scope.
func (s *Scope) Release() {
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
	s.releases = nil
}

// ReleaseOnError releases the scope when *err is non-nil.
func (s *Scope) ReleaseOnError(err *error) {
	if *err != nil {
		s.Release()
	}
}

// Move transfers ownership of the registered functions to the returned scope,
// leaving s empty.
func (s *Scope) Move() Scope {
	moved := Scope{releases: s.releases}
	s.releases = nil
	return moved
}
