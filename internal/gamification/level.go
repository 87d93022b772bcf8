// Package gamification implements daily streak claims, level progression and once-per-day achievements
package gamification

import "github.com/vcscsvcscs/medimind-backend/pkg/model"

type levelThreshold struct {
	minPoints int
	level     model.Level
}

// thresholds are ordered from the highest tier down; lower bounds are inclusive
var thresholds = []levelThreshold{
	{7500, model.LevelDiamond},
	{3500, model.LevelPlatinum},
	{1500, model.LevelGold},
	{500, model.LevelSilver},
	{0, model.LevelBronze},
}

// LevelOf returns the level for a points total
func LevelOf(points int) model.Level {
	for _, t := range thresholds {
		if points >= t.minPoints {
			return t.level
		}
	}
	return model.LevelBronze
}

// PointsToNextLevel returns the points missing to reach the next tier, and false at the top tier
func PointsToNextLevel(points int) (int, bool) {
	for i := len(thresholds) - 1; i >= 0; i-- {
		if points < thresholds[i].minPoints {
			return thresholds[i].minPoints - points, true
		}
	}
	return 0, false
}

// BonusFor returns the points awarded for a claim that brings the streak to streak days
func BonusFor(streak int) int {
	switch {
	case streak >= 60:
		return 100
	case streak >= 30:
		return 50
	case streak >= 14:
		return 25
	case streak >= 7:
		return 15
	default:
		return 5
	}
}
