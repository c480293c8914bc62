package util

type StringSet map[string]any

func NewStringSet(keys ...string) StringSet {
	ss := make(StringSet, len(keys))

	for _, k := range keys {
		ss.Add(k)
	}

	return ss
}

func (s StringSet) Add(key string) {
	s[key] = struct{}{}
}

func (s StringSet) Remove(key string) {
	delete(s, key)
}

func (s StringSet) Has(key string) bool {
	_, ok := s[key]

	return ok
}

func (s StringSet) List() []string {
	res := make([]string, 0, len(s))

	for k := range s {
		res = append(res, k)
	}

	return res
}
