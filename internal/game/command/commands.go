// Package command provides the text command registry, parser and the
// dispatcher that drives an encounter from player input.
package command

// Categories for organizing commands.
const (
	CategoryDice   = "dice"
	CategoryCombat = "combat"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to encounter operations.
const (
	HandlerRoll     = "roll"
	HandlerLock     = "lock"
	HandlerSelect   = "select"
	HandlerDeselect = "deselect"
	HandlerAttack   = "attack"
	HandlerEnemy    = "enemy"
	HandlerStatus   = "status"
	HandlerHelp     = "help"
	HandlerQuit     = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument form, e.g. "lock <die>".
	Usage string
	// Help is the short help text.
	Help     string
	Category string
	Handler  string
	// MinArgs is the number of required arguments.
	MinArgs int
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "roll", Aliases: []string{"r"}, Usage: "roll", Help: "Roll unlocked dice; rerolls spend the retry budget", Category: CategoryDice, Handler: HandlerRoll},
		{Name: "lock", Aliases: []string{"l", "unlock"}, Usage: "lock <die>", Help: "Toggle the lock on a die (1-based)", Category: CategoryDice, Handler: HandlerLock, MinArgs: 1},
		{Name: "select", Aliases: []string{"target", "t"}, Usage: "select <enemy>", Help: "Target an enemy by number, name or id", Category: CategoryCombat, Handler: HandlerSelect, MinArgs: 1},
		{Name: "deselect", Aliases: nil, Usage: "deselect", Help: "Clear the current target", Category: CategoryCombat, Handler: HandlerDeselect},
		{Name: "attack", Aliases: []string{"a"}, Usage: "attack", Help: "Attack the target with the current hand", Category: CategoryCombat, Handler: HandlerAttack},
		{Name: "enemy", Aliases: []string{"e", "next"}, Usage: "enemy", Help: "Let the enemies act", Category: CategoryCombat, Handler: HandlerEnemy},
		{Name: "status", Aliases: []string{"st"}, Usage: "status", Help: "Show dice, hand, HP and enemies", Category: CategorySystem, Handler: HandlerStatus},
		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Help: "Leave the encounter", Category: CategorySystem, Handler: HandlerQuit},
	}
}
