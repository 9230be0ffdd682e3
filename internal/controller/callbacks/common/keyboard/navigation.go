package keyboard

import (
	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/practice_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

// DayPagination is the prev / date / next row of the calendar.
func DayPagination(from, to model.Date) []models.InlineKeyboardButton {
	label := from.String()
	if to != from {
		label += " – " + to.String()
	}
	return []models.InlineKeyboardButton{
		Button("◀️", callbacktypes.Calendar(callbacktypes.NavPrev)),
		Button("📅 "+label, callbacktypes.Calendar(callbacktypes.NavToday)),
		Button("▶️", callbacktypes.Calendar(callbacktypes.NavNext)),
	}
}

// AxisButton switches to the other resource axis.
func AxisButton(current model.ResourceKind) models.InlineKeyboardButton {
	if current == model.ResourceRoom {
		return Button("👤 Practitioners", callbacktypes.Calendar(callbacktypes.NavAxis))
	}
	return Button("🚪 Rooms", callbacktypes.Calendar(callbacktypes.NavAxis))
}

func RefreshButton() models.InlineKeyboardButton {
	return Button("🔄 Refresh", callbacktypes.Calendar(callbacktypes.NavRefresh))
}

func BackButton() models.InlineKeyboardButton {
	return Button("⬅️ Back", callbacktypes.Calendar(callbacktypes.NavBack))
}
