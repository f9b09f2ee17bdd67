package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

const wordsHeader = "word,definition,part_of_speech,example,word_in_sentence,blanked_example,form\n"

const sampleCSV = wordsHeader +
	"abet,to aid or encourage,verb,They abetted the plan.,abetted,They <BLANK> the plan.,abet\n" +
	"candid,frank and honest,adjective,She gave a candid answer.,candid,She gave a <BLANK> answer.,candid\n" +
	"candor,honesty of expression,noun,He spoke with candor.,candor,He spoke with <BLANK>.,candor\n" +
	"rancor,bitter resentment,noun,The feud bred rancor.,rancor,The feud bred <BLANK>.,rancor\n"

func loadRepo(t *testing.T, data string) *WordRepository {
	t.Helper()
	r := NewEmptyWordRepository()
	require.NoError(t, r.Load(strings.NewReader(data)))
	return r
}

func TestLoadValidCSV(t *testing.T) {
	r := loadRepo(t, sampleCSV)

	assert.Equal(t, 4, r.Count())

	all := r.All()
	require.Len(t, all, 4)
	assert.Equal(t, "abet", all[0].Word, "insertion order preserved")
	assert.Equal(t, "rancor", all[3].Word)

	w, err := r.Get(entities.WordID("candid", "candid"))
	require.NoError(t, err)
	assert.Equal(t, "frank and honest", w.Definition)
	assert.Equal(t, "She gave a <BLANK> answer.", w.BlankedExample)
}

func TestLoadTrimsCells(t *testing.T) {
	r := loadRepo(t, wordsHeader+"  abet , to aid or encourage ,verb,x,x,x, abet \n")

	all := r.All()
	require.Len(t, all, 1)
	assert.Equal(t, "abet", all[0].Word)
	assert.Equal(t, "to aid or encourage", all[0].Definition)
}

func TestLoadMissingHeaderColumn(t *testing.T) {
	r := NewEmptyWordRepository()
	err := r.Load(strings.NewReader("word,definition,part_of_speech,example,word_in_sentence,blanked_example\nx,x,x,x,x,x\n"))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, vErr.Row)
	assert.Equal(t, "form", vErr.Column)
}

func TestLoadWrongHeaderColumn(t *testing.T) {
	r := NewEmptyWordRepository()
	err := r.Load(strings.NewReader("word,meaning,part_of_speech,example,word_in_sentence,blanked_example,form\n"))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "definition", vErr.Column)
}

func TestLoadEmptyCell(t *testing.T) {
	r := NewEmptyWordRepository()
	err := r.Load(strings.NewReader(wordsHeader + "abet,,verb,x,x,x,abet\n"))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 1, vErr.Row)
	assert.Equal(t, "definition", vErr.Column)
}

func TestLoadShortRow(t *testing.T) {
	r := NewEmptyWordRepository()
	err := r.Load(strings.NewReader(wordsHeader +
		"abet,to aid,verb,x,x,x,abet\n" +
		"candid,frank,adjective,x,x,x\n"))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 2, vErr.Row)
	assert.Equal(t, "form", vErr.Column)
}

func TestLoadDuplicateEntry(t *testing.T) {
	r := NewEmptyWordRepository()
	err := r.Load(strings.NewReader(wordsHeader +
		"abet,to aid,verb,x,x,x,abet\n" +
		"abet,to encourage,verb,y,y,y,abet\n"))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 2, vErr.Row)
}

func TestLoadHomographsAllowedByForm(t *testing.T) {
	r := loadRepo(t, wordsHeader+
		"effect,a result,noun,x,x,x,effect (noun)\n"+
		"effect,to bring about,verb,y,y,y,effect (verb)\n")

	assert.Equal(t, 2, r.Count())
}

func TestLoadFailureKeepsCurrentSet(t *testing.T) {
	r := loadRepo(t, sampleCSV)

	err := r.Load(strings.NewReader(wordsHeader + "new,,noun,x,x,x,new\n"))
	require.Error(t, err)

	assert.Equal(t, 4, r.Count(), "failed load must not touch the loaded set")
	_, err = r.Get(entities.WordID("abet", "abet"))
	assert.NoError(t, err)
}

func TestGetUnknownID(t *testing.T) {
	r := loadRepo(t, sampleCSV)

	_, err := r.Get("no-such-id")
	assert.ErrorIs(t, err, ErrWordNotFound)
}

func TestSearchOrdering(t *testing.T) {
	r := loadRepo(t, sampleCSV)

	// Word matches rank before definition matches; ties keep insertion order.
	got := r.Search("or")
	require.Len(t, got, 3)
	assert.Equal(t, "candor", got[0].Word)
	assert.Equal(t, "rancor", got[1].Word)
	assert.Equal(t, "abet", got[2].Word, "definition match comes last")
}

func TestSearchCaseInsensitive(t *testing.T) {
	r := loadRepo(t, sampleCSV)

	got := r.Search("CANDID")
	require.Len(t, got, 1)
	assert.Equal(t, "candid", got[0].Word)
}

func TestSearchEarlierMatchRanksFirst(t *testing.T) {
	r := loadRepo(t, sampleCSV)

	got := r.Search("cand")
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, "candid", got[0].Word)
	assert.Equal(t, "candor", got[1].Word)
}

func TestSearchBlankQuery(t *testing.T) {
	r := loadRepo(t, sampleCSV)

	assert.Nil(t, r.Search("   "))
}
