package lookup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/c360/streampump/declarative/segment"
	"github.com/c360/streampump/pipeline"
)

// SegmentSuite constructs dictionary lookups through the segment builder.
type SegmentSuite struct {
	suite.Suite
	dir     string
	service *pipeline.Service
	classes *segment.ClassRegistry
}

func (s *SegmentSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.service = pipeline.NewService()
	s.Require().NoError(s.service.AddPipeline(pipeline.New("main", nil, nil, pipeline.NewNullSink("sink"))))

	s.classes = segment.NewClassRegistry()
	s.Require().NoError(Register(s.classes))
}

func (s *SegmentSuite) write(name, body string) {
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, name), []byte(body), 0o644))
}

func (s *SegmentSuite) construct() error {
	builder, err := segment.NewBuilder(filepath.Join(s.dir, "*"), s.classes, nil, nil)
	s.Require().NoError(err)
	return builder.ConstructSegment(segment.App{Service: s.service})
}

func (s *SegmentSuite) TestRegistersWithService() {
	s.write("countries.yml", "pipeline_id: main\nlookup: countries\nmodule: lookup\nclass: DictionaryLookup\ndata:\n  CZ: Czechia\n")
	s.write("units.json", `{"pipeline_id": "main", "id": "units", "lookup": true, "module": "lookup", "class": "DictionaryLookup", "data": {"m": "metre"}}`)

	s.Require().NoError(s.construct())

	l, err := s.service.LocateLookup("countries")
	s.Require().NoError(err)
	v, ok := l.(*DictionaryLookup).Get("CZ")
	s.True(ok)
	s.Equal("Czechia", v)

	l, err = s.service.LocateLookup("units")
	s.Require().NoError(err)
	s.Equal(1, l.(*DictionaryLookup).Len())

	// Lookups never touch the processor chain
	p, err := s.service.Locate("main")
	s.Require().NoError(err)
	s.Len(p.Processors(), 1)
}

func (s *SegmentSuite) TestDuplicateID() {
	s.write("a.yml", "pipeline_id: main\nlookup: shared\nmodule: lookup\nclass: DictionaryLookup\n")
	s.write("b.yml", "pipeline_id: main\nlookup: shared\nmodule: lookup\nclass: DictionaryLookup\n")

	err := s.construct()
	s.Require().Error(err)
	s.Contains(err.Error(), "b.yml")
}

func TestSegmentSuite(t *testing.T) {
	suite.Run(t, new(SegmentSuite))
}
