package dto

import (
	"time"

	"github.com/checkmarble/form-designer/usecases/canvas"
)

type BeginDragBody struct {
	FieldId string      `json:"fieldId" binding:"required"`
	Device  string      `json:"device" binding:"required,device"`
	Pointer PositionDto `json:"pointer"`
}

type PointerBody struct {
	Pointer PositionDto `json:"pointer"`
}

type ResizeBody struct {
	FieldId string  `json:"fieldId" binding:"required"`
	Device  string  `json:"device" binding:"required,device"`
	Size    SizeDto `json:"size"`
}

type DropNewFieldBody struct {
	Type    string      `json:"type" binding:"required,field_type"`
	Device  string      `json:"device" binding:"required,device"`
	Pointer PositionDto `json:"pointer"`
}

type GestureDto struct {
	Id        string      `json:"id"`
	FieldId   string      `json:"fieldId"`
	Device    string      `json:"device"`
	Offset    PositionDto `json:"offset"`
	Preview   PositionDto `json:"preview"`
	StartedAt time.Time   `json:"startedAt"`
}

func AdaptGestureDto(g canvas.Gesture) GestureDto {
	return GestureDto{
		Id:        g.Id,
		FieldId:   g.FieldId,
		Device:    string(g.Device),
		Offset:    AdaptPositionDto(g.Offset),
		Preview:   AdaptPositionDto(g.Preview),
		StartedAt: g.StartedAt,
	}
}
