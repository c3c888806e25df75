package testutil

import (
	"github.com/ssmith-git/jwst/internal/association"
	"github.com/ssmith-git/jwst/internal/pipeline"
)

// MemberSpec is a compact member description for building fixtures.
type MemberSpec struct {
	Name string
	Type string
}

// MakeAssociation builds a single-product association for tests.
func MakeAssociation(id string, members ...MemberSpec) *association.Association {
	product := association.Product{}
	for _, m := range members {
		product.Members = append(product.Members, association.Member{
			ExpName: m.Name,
			ExpType: m.Type,
		})
	}
	return &association.Association{
		ID:        id,
		Pool:      id + "_pool",
		TableName: id + "_asn.json",
		Products:  []association.Product{product},
	}
}

// MockSet bundles one mock per collaborator.
type MockSet struct {
	Analyzer   *MockAnalyzer
	Averager   *MockAverager
	Normalizer *MockNormalizer
	Blender    *MockBlender
	Persister  *MockPersister
}

// NewMockSet creates a full set of passing mocks.
func NewMockSet() *MockSet {
	return &MockSet{
		Analyzer:   &MockAnalyzer{},
		Averager:   &MockAverager{},
		Normalizer: &MockNormalizer{},
		Blender:    &MockBlender{},
		Persister:  &MockPersister{},
	}
}

// Stages adapts the mock set to the controller's collaborator bundle.
func (s *MockSet) Stages() pipeline.Stages {
	return pipeline.Stages{
		Analyzer:   s.Analyzer,
		Averager:   s.Averager,
		Normalizer: s.Normalizer,
		Blender:    s.Blender,
		Persister:  s.Persister,
	}
}
