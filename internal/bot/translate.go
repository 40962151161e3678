package bot

import "github.com/NastyaGoryachaya/crypto-tracker-service/internal/ports/errcode"

func translateBotError(code errcode.Code) string {
	switch code {
	case errcode.NotFound:
		return "Монета не найдена"
	default:
		return "Внутренняя ошибка сервиса, попробуйте позже"
	}
}
