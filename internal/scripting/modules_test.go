package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicefight/internal/game/dice"
	"github.com/cory-johannsen/dicefight/internal/scripting"
)

// sixes rolls every die as a 6 and draws no element.
type sixes struct{}

func (sixes) Intn(n int) int { return n - 1 }

func runScript(t *testing.T, mgr *scripting.Manager, luaSrc, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	dir := writeTempLua(t, "test.lua", luaSrc)
	scope := "modtest_" + t.Name()
	require.NoError(t, mgr.Load(scope, dir, 0))
	ret, err := mgr.CallHook(scope, hook, args...)
	require.NoError(t, err)
	return ret
}

func TestEngineLog_AllLevels(t *testing.T) {
	mgr, logs := newTestManager(t)
	runScript(t, mgr, `
		function do_all_logs()
			engine.log.debug("d")
			engine.log.info("i")
			engine.log.warn("w")
			engine.log.error("e")
		end
	`, "do_all_logs")

	levels := map[zapcore.Level]string{}
	for _, e := range logs.FilterLoggerName("lua").All() {
		levels[e.Level] = e.Message
	}
	assert.Equal(t, "d", levels[zapcore.DebugLevel])
	assert.Equal(t, "i", levels[zapcore.InfoLevel])
	assert.Equal(t, "w", levels[zapcore.WarnLevel])
	assert.Equal(t, "e", levels[zapcore.ErrorLevel])
}

func TestEngineDice_Roll_ReturnsTable(t *testing.T) {
	core, _ := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(dice.NewLoggedRoller(sixes{}, zap.New(core)), zap.New(core))
	t.Cleanup(mgr.Close)

	ret := runScript(t, mgr, `
		function roll()
			local r = engine.dice.roll("3d6+2")
			return r.expression .. "|" .. r.total .. "|" .. #r.dice .. "|" .. r.dice[1]
		end
	`, "roll")
	assert.Equal(t, lua.LString("3d6+2|20|3|6"), ret)
}

func TestEngineDice_Roll_BadExpressionIsLuaError(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function try_roll()
			local ok, err = pcall(engine.dice.roll, "banana")
			if ok then return "accepted" end
			return "rejected"
		end
	`, "try_roll")
	assert.Equal(t, lua.LString("rejected"), ret)
}

func TestProperty_EngineDiceRollWithinBounds(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "roll.lua", `
		function roll_total(n)
			return engine.dice.roll(n .. "d6").total
		end
	`)
	require.NoError(t, mgr.Load("bounds", dir, 0))
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(rt, "n")
		ret, err := mgr.CallHook("bounds", "roll_total", lua.LNumber(n))
		if err != nil {
			rt.Fatal(err)
		}
		total, ok := ret.(lua.LNumber)
		if !ok || int(total) < n || int(total) > 6*n {
			rt.Fatalf("total %v out of range for %dd6", ret, n)
		}
	})
}

func TestEngineDice_Roll_OversizedPoolIsLuaError(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function try_roll()
			local ok, err = pcall(engine.dice.roll, "2000000000d6")
			if ok then return "accepted" end
			return tostring(err)
		end
	`, "try_roll")
	assert.Contains(t, ret.String(), "must be <= 100")
}
