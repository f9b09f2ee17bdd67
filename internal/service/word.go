package service

import (
	"io"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

type WordService struct {
	repository WordRepository
}

func NewWordService(repository WordRepository) *WordService {
	return &WordService{repository: repository}
}

func (s *WordService) Get(id string) (*entities.Word, error) {
	return s.repository.Get(id)
}

func (s *WordService) All() []*entities.Word {
	return s.repository.All()
}

func (s *WordService) Search(query string) []*entities.Word {
	return s.repository.Search(query)
}

func (s *WordService) Count() int {
	return s.repository.Count()
}

// Load replaces the vocabulary set from an uploaded CSV. Progress records are
// untouched; words whose content is unchanged keep their IDs and therefore
// their history.
func (s *WordService) Load(src io.Reader) error {
	return s.repository.Load(src)
}
