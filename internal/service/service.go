package service

import (
	"errors"
	"time"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/haierkeys/murverse-service/internal/dto"
	"github.com/haierkeys/murverse-service/pkg/code"
	"github.com/haierkeys/murverse-service/pkg/logger"
	"github.com/haierkeys/murverse-service/pkg/timex"
)

// EventSink receives fragment change events after a successful write.
// EventSink 碎片变更事件接收者（例如 websocket hub）
type EventSink interface {
	Publish(uid int64, event dto.FragmentEventDTO)
}

type nopSink struct{}

func (nopSink) Publish(int64, dto.FragmentEventDTO) {}

// Clock 可注入的时钟
type Clock func() time.Time

const (
	EventCreated  = "created"
	EventUpdated  = "updated"
	EventDeleted  = "deleted"
	EventRestored = "restored"
)

var copyOption = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: time.Time{},
			DstType: timex.Time{},
			Fn: func(src interface{}) (interface{}, error) {
				return timex.Time(src.(time.Time)), nil
			},
		},
	},
}

// copyDTO 将领域模型复制为 DTO
func copyDTO(to, from interface{}) error {
	return copier.CopyWithOption(to, from, copyOption)
}

// repoError maps a repository error to a response code: a missing row becomes
// notFound, anything else is logged and reported as ErrorDBQuery.
// repoError 将仓储错误转换为响应码
func repoError(l *zap.Logger, method string, err error, notFound *code.Code) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil {
		return notFound
	}
	l.Error("repository call failed", zap.String(logger.FieldMethod, method), zap.Error(err))
	return code.ErrorDBQuery
}
