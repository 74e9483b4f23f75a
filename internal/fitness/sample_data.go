package fitness

// bcrypt hash of "secret", shared by all demo accounts
const sampleDataPasswordHash = "$2b$12$EixZaYVK1fsbw1ZfbX3OXePaWxn96p36WQoeG6Lruj3vjPGga31lW"

func intp(v int) *int {
	return &v
}

func floatp(v float64) *float64 {
	return &v
}

// NewStoreWithSampleData returns a store preloaded with a couple of
// demo users (password "secret"), exercises, workouts, plans and
// progress logs. Used for local development and in tests.
func NewStoreWithSampleData() *Store {
	s := NewStore()

	now := s.now()
	today := DateOnly(now)

	s.users[1] = &User{
		ID:        1,
		Email:     "john@example.com",
		Username:  "johndoe",
		FullName:  "John Doe",
		IsActive:  true,
		CreatedAt: now,
	}
	s.users[2] = &User{
		ID:        2,
		Email:     "jane@example.com",
		Username:  "janedoe",
		FullName:  "Jane Smith",
		IsActive:  true,
		CreatedAt: now,
	}

	s.passwordHashes["johndoe"] = sampleDataPasswordHash
	s.passwordHashes["janedoe"] = sampleDataPasswordHash

	s.exercises[1] = &Exercise{
		ID:              1,
		Name:            "Barbell Bench Press",
		Description:     "Lie on a flat bench and press the barbell upward",
		MuscleGroups:    []MuscleGroup{MuscleGroupChest, MuscleGroupShoulders, MuscleGroupArms},
		EquipmentNeeded: "Barbell, Bench",
		CreatedBy:       1,
	}
	s.exercises[2] = &Exercise{
		ID:              2,
		Name:            "Squat",
		Description:     "Lower your body by bending your knees, keeping your back straight",
		MuscleGroups:    []MuscleGroup{MuscleGroupLegs},
		EquipmentNeeded: "Barbell, Squat Rack",
		CreatedBy:       1,
	}
	s.exercises[3] = &Exercise{
		ID:              3,
		Name:            "Deadlift",
		Description:     "Lift the barbell from the ground to hip level",
		MuscleGroups:    []MuscleGroup{MuscleGroupBack, MuscleGroupLegs},
		EquipmentNeeded: "Barbell",
		CreatedBy:       1,
	}
	s.exercises[4] = &Exercise{
		ID:              4,
		Name:            "Running",
		Description:     "Running at steady pace",
		MuscleGroups:    []MuscleGroup{MuscleGroupLegs, MuscleGroupCore},
		EquipmentNeeded: "None",
		CreatedBy:       2,
	}
	s.exercises[5] = &Exercise{
		ID:              5,
		Name:            "Plank",
		Description:     "Hold the position with your body weight on forearms and toes",
		MuscleGroups:    []MuscleGroup{MuscleGroupCore},
		EquipmentNeeded: "None",
		CreatedBy:       2,
	}

	s.sets[1] = &ExerciseSet{
		ID:         1,
		ExerciseID: 1,
		Reps:       intp(10),
		Weight:     floatp(135),
		Notes:      "Felt strong today",
	}
	s.sets[2] = &ExerciseSet{
		ID:         2,
		ExerciseID: 2,
		Reps:       intp(8),
		Weight:     floatp(225),
	}
	s.sets[3] = &ExerciseSet{
		ID:              3,
		ExerciseID:      4,
		DurationSeconds: intp(1800),
		Distance:        floatp(5),
		Notes:           "Steady pace",
	}
	s.sets[4] = &ExerciseSet{
		ID:              4,
		ExerciseID:      5,
		DurationSeconds: intp(60),
		Notes:           "Core engaged",
	}

	s.workouts[1] = &Workout{
		ID:              1,
		Title:           "Morning Run",
		Description:     "5K run around the park",
		Category:        WorkoutCategoryCardio,
		DurationMinutes: 30,
		CaloriesBurned:  intp(300),
		Notes:           "Felt great, good pace",
		CreatedAt:       now,
		UserID:          2,
	}
	s.workouts[2] = &Workout{
		ID:              2,
		Title:           "Chest Day",
		Description:     "Focused on chest exercises",
		Category:        WorkoutCategoryStrength,
		DurationMinutes: 45,
		CaloriesBurned:  intp(250),
		Notes:           "Increased weight on bench press",
		CreatedAt:       now,
		UserID:          1,
	}
	s.workouts[3] = &Workout{
		ID:              3,
		Title:           "Yoga Session",
		Description:     "Full body stretching",
		Category:        WorkoutCategoryMobility,
		DurationMinutes: 60,
		CaloriesBurned:  intp(150),
		Notes:           "Focused on breathing techniques",
		CreatedAt:       now,
		UserID:          2,
	}

	s.workoutSets[1] = []int{3}
	s.workoutSets[2] = []int{1}
	s.workoutSets[3] = []int{4}

	s.plans[1] = &WorkoutPlan{
		ID:                 1,
		Name:               "Beginner Strength Program",
		Description:        "8-week program for beginners to build strength",
		DurationWeeks:      8,
		TargetMuscleGroups: []MuscleGroup{MuscleGroupFullBody},
		DifficultyLevel:    1,
		CreatedAt:          now,
		CreatedBy:          1,
		Workouts:           []int{2, 3},
	}
	s.plans[2] = &WorkoutPlan{
		ID:                 2,
		Name:               "5K Training Plan",
		Description:        "6-week program to prepare for a 5K run",
		DurationWeeks:      6,
		TargetMuscleGroups: []MuscleGroup{MuscleGroupLegs, MuscleGroupCore},
		DifficultyLevel:    2,
		CreatedAt:          now,
		CreatedBy:          2,
		Workouts:           []int{1},
	}

	s.stats[1] = &UserStats{
		UserID:              1,
		Weight:              floatp(180),
		Height:              floatp(72),
		BodyFatPercentage:   floatp(15),
		TotalWorkouts:       15,
		TotalWorkoutMinutes: 750,
		StreakDays:          3,
		LastWorkoutDate:     &today,
		LastUpdated:         now,
	}
	s.stats[2] = &UserStats{
		UserID:              2,
		Weight:              floatp(140),
		Height:              floatp(65),
		BodyFatPercentage:   floatp(22),
		TotalWorkouts:       22,
		TotalWorkoutMinutes: 1200,
		StreakDays:          5,
		LastWorkoutDate:     &today,
		LastUpdated:         now,
	}

	s.logs[1] = &ProgressLog{
		ID:                1,
		UserID:            1,
		LogDate:           today,
		Weight:            floatp(180),
		BodyFatPercentage: floatp(15),
		Notes:             "Feeling stronger this week",
		Measurements:      map[string]float64{"chest": 42, "waist": 34, "arms": 15.5},
		CreatedAt:         now,
	}
	s.logs[2] = &ProgressLog{
		ID:                2,
		UserID:            2,
		LogDate:           today,
		Weight:            floatp(140),
		BodyFatPercentage: floatp(21.8),
		Notes:             "Down 0.2% body fat from last week",
		Measurements:      map[string]float64{"chest": 36, "waist": 28, "thighs": 22},
		CreatedAt:         now,
	}

	s.nextUserID = len(s.users) + 1
	s.nextExerciseID = len(s.exercises) + 1
	s.nextWorkoutID = len(s.workouts) + 1
	s.nextSetID = len(s.sets) + 1
	s.nextPlanID = len(s.plans) + 1
	s.nextLogID = len(s.logs) + 1

	return s
}
