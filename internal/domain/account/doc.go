// Package account содержит доменную модель привязки игрового аккаунта.
//
// Это ядро бизнес-логики системы "Dota Pulse". Пакет определяет:
//
//   - Сущность (Entity): Account - связка Telegram-пользователя с игровым аккаунтом
//   - Value Objects: TelegramID, SteamID, Rating, RankTier
//   - Интерфейсы: Repository, Cache
//
// # Архитектурные принципы
//
// Пакет следует принципам Clean Architecture и DDD:
//
//  1. Нулевые внешние зависимости - только стандартная библиотека Go
//  2. Dependency Inversion - определяет интерфейсы, которые реализуются в infrastructure
//  3. Rich Domain Model - бизнес-логика инкапсулирована в сущностях
//
// # Условный рейтинг
//
// Сервер игры не раскрывает настоящий MMR, поэтому бот ведёт собственную
// симуляцию. Значение рейтинга всегда несёт пометку происхождения:
//
//	r := account.ManualRating(4000)      // игрок сообщил точное число
//	r = r.Apply(+30)                      // победа в рейтинговой игре
//	r = r.Apply(-30)                      // поражение
//
//	e := account.EstimatedRating(tier.EstimateMMR()) // оценка по медали
//	u := account.UnsetRating()                       // ничего не известно
//
// Apply на неизвестном рейтинге не делает ничего: симуляции не от чего
// отталкиваться, пока игрок не сообщил число или профиль не показал медаль.
//
// # Watermark'и
//
// Обнаружение новых игр построено на watermark'ах - ID последнего
// обработанного матча по каждому режиму:
//
//	if acc.IsNewMatch(latestID) {
//	    // записать матч, отправить карточку
//	    acc.AdvanceMatchWatermark(latestID)
//	}
//
// Watermark никогда не откатывается, поэтому уведомление о каждой игре
// уходит ровно один раз, сколько бы раз цикл опроса её ни увидел.
//
// # Пример использования
//
//	acc, err := account.NewAccount(account.NewAccountParams{
//	    TelegramID: account.TelegramID(123456789),
//	    SteamID:    account.SteamID(91064780),
//	    RankTier:   account.RankTier(54), // Legend 4
//	})
//	if err != nil {
//	    return err
//	}
//
//	// Рейтинг оценён по медали: Legend 4 ~= 3200
//	value, ok := acc.EffectiveRating()
package account
