package apperror

import "errors"

var (
	ErrSpawnFailed        = errors.New("failed to spawn player process")
	ErrInvalidInstruction = errors.New("could not be parsed to instruction")
	ErrInvalidDirection   = errors.New("could not be parsed to direction")
	ErrInvalidHeader      = errors.New("invalid game header")
	ErrInvalidPosition    = errors.New("invalid position")
	ErrNotEnoughPlayers   = errors.New("at least two players are required")
	ErrBoardTooSmall      = errors.New("board has fewer cells than players")
	ErrNoScripts          = errors.New("no player scripts given")
)
