package book

import (
	"strings"
)

// Genre 图书分类
// 数值与历史数据保持一致(6未使用)
type Genre int

const (
	GenreUndefined Genre = -1
	GenreFiction   Genre = 1
	GenreChildrens Genre = 2
	GenreFantasy   Genre = 3
	GenreMystery   Genre = 4
	GenreHistory   Genre = 5
	GenreBiography Genre = 7
	GenreHobbies   Genre = 8
	GenreSelfHelp  Genre = 9
	GenreRomance   Genre = 10
)

var genreNames = map[Genre]string{
	GenreUndefined: "Undefined",
	GenreFiction:   "Fiction",
	GenreChildrens: "Childrens",
	GenreFantasy:   "Fantasy",
	GenreMystery:   "Mystery",
	GenreHistory:   "History",
	GenreBiography: "Biography",
	GenreHobbies:   "Hobbies",
	GenreSelfHelp:  "SelfHelp",
	GenreRomance:   "Romance",
}

func (g Genre) String() string {
	if name, ok := genreNames[g]; ok {
		return name
	}
	return "Undefined"
}

// IsValid 是否为已知分类
func (g Genre) IsValid() bool {
	_, ok := genreNames[g]
	return ok
}

// ParseGenre 按名称解析分类(忽略大小写)
func ParseGenre(name string) (Genre, error) {
	n := strings.TrimSpace(name)
	for g, gn := range genreNames {
		if strings.EqualFold(gn, n) {
			return g, nil
		}
	}
	return GenreUndefined, ErrInvalidGenre
}

// GenreNames 所有分类名(用于注册binding校验)
func GenreNames() []string {
	names := make([]string, 0, len(genreNames))
	for _, n := range genreNames {
		names = append(names, n)
	}
	return names
}
