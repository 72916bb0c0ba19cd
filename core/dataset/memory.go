package dataset

// Memory is an in-memory Dataset indexed by token.
type Memory struct {
	version     string
	samples     map[string]Sample
	annotations map[string]SampleAnnotation
	annOrder    []SampleAnnotation
	instances   map[string]Instance
	scenes      map[string]Scene
}

// NewMemory indexes the given tables.
func NewMemory(version string, scenes []Scene, samples []Sample, anns []SampleAnnotation, instances []Instance) *Memory {
	m := &Memory{
		version:     version,
		samples:     make(map[string]Sample, len(samples)),
		annotations: make(map[string]SampleAnnotation, len(anns)),
		annOrder:    anns,
		instances:   make(map[string]Instance, len(instances)),
		scenes:      make(map[string]Scene, len(scenes)),
	}
	for _, s := range samples {
		m.samples[s.Token] = s
	}
	for _, a := range anns {
		m.annotations[a.Token] = a
	}
	for _, i := range instances {
		m.instances[i.Token] = i
	}
	for _, s := range scenes {
		m.scenes[s.Token] = s
	}
	return m
}

func (m *Memory) Version() string { return m.version }

func (m *Memory) Sample(token string) (Sample, error) {
	s, ok := m.samples[token]
	if !ok {
		return Sample{}, NotFound("sample", token)
	}
	return s, nil
}

func (m *Memory) SampleAnnotation(token string) (SampleAnnotation, error) {
	a, ok := m.annotations[token]
	if !ok {
		return SampleAnnotation{}, NotFound("sample_annotation", token)
	}
	return a, nil
}

func (m *Memory) Instance(token string) (Instance, error) {
	i, ok := m.instances[token]
	if !ok {
		return Instance{}, NotFound("instance", token)
	}
	return i, nil
}

func (m *Memory) Scene(token string) (Scene, error) {
	s, ok := m.scenes[token]
	if !ok {
		return Scene{}, NotFound("scene", token)
	}
	return s, nil
}

func (m *Memory) Annotations() []SampleAnnotation { return m.annOrder }
