package clusterx

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

func buildDatabase(t *testing.T, seqs ...string) *Database {
	t.Helper()
	db, _, err := BuildDatabase(nil, NewSliceSource(seqs...), false)
	require.Nil(t, err)
	return db
}

func TestBuildDatabase(t *testing.T) {
	db, summary, err := BuildDatabase(nil, NewSliceSource("ATGC", "ATGG", "AAAA", "ATGC"), false)
	require.Nil(t, err)
	require.Equal(t, 4, db.Length)
	require.Len(t, db.Entries, 3)
	require.Equal(t, "1", db.Entries[0].ID)
	require.Equal(t, "3", db.Entries[2].ID)
	require.Equal(t, 4, summary.Sequences)
	require.Equal(t, 1, summary.Duplicates)
	require.Equal(t, 3, summary.Representatives)

	_, _, err = BuildDatabase(nil, NewSliceSource("ATGC", "ATG"), false)
	var lenErr *LengthError
	require.True(t, errors.As(err, &lenErr))
}

func TestDatabaseSaveLoad(t *testing.T) {
	db := buildDatabase(t, "ATGC", "ATGG", "ANAA", "A-GC")
	var buff bytes.Buffer
	require.Nil(t, db.Save(&buff))

	loaded, err := LoadDatabase(&buff)
	require.Nil(t, err)
	require.Equal(t, db.Length, loaded.Length)
	require.Equal(t, db.Alphabet.Symbols(), loaded.Alphabet.Symbols())
	require.Equal(t, db.Alphabet.Fallback(), loaded.Alphabet.Fallback())
	require.True(t, loaded.Alphabet.Recognized('U'))
	require.Len(t, loaded.Entries, len(db.Entries))
	for i, e := range db.Entries {
		require.Equal(t, e.ID, loaded.Entries[i].ID)
		require.Truef(t, e.Vector.equal(loaded.Entries[i].Vector), "entry %v", e.ID)
		require.Equal(t, e.Vector.Unknown(), loaded.Entries[i].Vector.Unknown())
	}
	require.Equal(t, "ANAA", loaded.Alphabet.DecodeString(loaded.Entries[2].Vector))
}

func TestDatabaseSaveLoadEmpty(t *testing.T) {
	db := buildDatabase(t)
	var buff bytes.Buffer
	require.Nil(t, db.Save(&buff))
	loaded, err := LoadDatabase(&buff)
	require.Nil(t, err)
	require.Empty(t, loaded.Entries)
}

func TestLoadDatabaseInvalid(t *testing.T) {
	_, err := LoadDatabase(bytes.NewReader([]byte("not a database")))
	require.NotNil(t, err)

	var buff bytes.Buffer
	enc, err := zstd.NewWriter(&buff)
	require.Nil(t, err)
	_, err = enc.Write([]byte("XXXXXXXXXXXXXXXX"))
	require.Nil(t, err)
	require.Nil(t, enc.Close())
	_, err = LoadDatabase(&buff)
	require.NotNil(t, err)

	// truncated stream
	db := buildDatabase(t, "ATGC", "ATGG")
	buff.Reset()
	require.Nil(t, db.Save(&buff))
	_, err = LoadDatabase(bytes.NewReader(buff.Bytes()[:buff.Len()/2]))
	require.NotNil(t, err)
}

func TestDatabaseQuery(t *testing.T) {
	db := buildDatabase(t, "ATGC", "ATGG", "AAAA")
	var buff bytes.Buffer
	summary, err := db.QueryWithWriter(NewSliceSource("ATGA", "TTTT", "AAAA"), 1, false, "", &buff)
	require.Nil(t, err)
	require.Equal(t, "1\tATGA\t1\tATGC\t1\n1\tATGA\t2\tATGG\t1\n3\tAAAA\t3\tAAAA\t0\n", buff.String())
	require.Equal(t, 3, summary.Sequences)
	require.Equal(t, 3, summary.Hits)
	require.Equal(t, 3, summary.Representatives)
}

func TestDatabaseQueryErrors(t *testing.T) {
	db := buildDatabase(t, "ATGC")
	_, err := db.Query(NewSliceSource("ATG"), 1, false, func(*Hit) error { return nil })
	var lenErr *LengthError
	require.True(t, errors.As(err, &lenErr))

	_, err = db.Query(NewSliceSource("ATGC"), -1, false, func(*Hit) error { return nil })
	require.NotNil(t, err)

	_, err = db.Query(NewSliceSource("ANGC"), 1, true, func(*Hit) error { return nil })
	var symErr *SymbolError
	require.True(t, errors.As(err, &symErr))

	_, err = db.QueryWithWriter(NewSliceSource("ATGC"), 1, false, "{{nope}}", &bytes.Buffer{})
	require.NotNil(t, err)
}
