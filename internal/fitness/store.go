package fitness

import (
	"sync"
	"time"
)

// Store is the in-memory database of the fitness tracker. A single
// mutex guards all collections, which keeps cross entity operations
// such as workout creation with its sets and stats update atomic.
// Ids grow monotonically and are never reused, not even after the
// entity they belonged to is deleted.
type Store struct {
	mutex sync.RWMutex

	users     map[int]*User
	exercises map[int]*Exercise
	workouts  map[int]*Workout
	sets      map[int]*ExerciseSet
	// workout id to the ids of its exercise sets, in insertion order
	workoutSets map[int][]int
	plans       map[int]*WorkoutPlan
	stats       map[int]*UserStats
	logs        map[int]*ProgressLog

	// password hashes live next to the users, keyed by the username
	// the user registered with
	passwordHashes map[string]string

	nextUserID     int
	nextExerciseID int
	nextWorkoutID  int
	nextSetID      int
	nextPlanID     int
	nextLogID      int

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:          make(map[int]*User),
		exercises:      make(map[int]*Exercise),
		workouts:       make(map[int]*Workout),
		sets:           make(map[int]*ExerciseSet),
		workoutSets:    make(map[int][]int),
		plans:          make(map[int]*WorkoutPlan),
		stats:          make(map[int]*UserStats),
		logs:           make(map[int]*ProgressLog),
		passwordHashes: make(map[string]string),
		nextUserID:     1,
		nextExerciseID: 1,
		nextWorkoutID:  1,
		nextSetID:      1,
		nextPlanID:     1,
		nextLogID:      1,
		now:            time.Now,
	}
}
