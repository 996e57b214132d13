// Package validator 注册自定义binding校验规则
//
// gin的ShouldBind*底层使用go-playground/validator，这里在启动时
// 把业务相关的tag注册到同一个校验引擎上：
//   - guid: 字符串必须是合法UUID（确认号、ISBN）
//   - genre: 字符串必须是已知的图书分类名（忽略大小写）
package validator

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	once    sync.Once
	regErr  error
	genreMu sync.RWMutex
	genres  = map[string]struct{}{}
)

// SetGenres 设置允许的分类名
// 由domain/book在初始化时注入，避免pkg反向依赖internal
func SetGenres(names []string) {
	genreMu.Lock()
	defer genreMu.Unlock()
	genres = make(map[string]struct{}, len(names))
	for _, n := range names {
		genres[strings.ToLower(n)] = struct{}{}
	}
}

// Register 将自定义规则注册到gin的默认校验引擎（只执行一次）
func Register() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			regErr = fmt.Errorf("gin校验引擎不是validator/v10")
			return
		}
		regErr = RegisterOn(v)
	})
	return regErr
}

// RegisterOn 在指定的validator实例上注册规则
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("guid", validateGUID); err != nil {
		return err
	}
	return v.RegisterValidation("genre", validateGenre)
}

func validateGUID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	id, err := uuid.Parse(s)
	return err == nil && id != uuid.Nil
}

func validateGenre(fl validator.FieldLevel) bool {
	genreMu.RLock()
	defer genreMu.RUnlock()
	_, ok := genres[strings.ToLower(fl.Field().String())]
	return ok
}
