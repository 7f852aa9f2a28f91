package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hajerbook/backend/core/course"
	"github.com/hajerbook/backend/core/grid"
)

type (
	courseListDoc struct {
		StudentID string      `bson:"_id"`
		Version   int64       `bson:"version"`
		Courses   []courseDoc `bson:"courses"`
		UpdatedAt time.Time   `bson:"updated_at"`
	}

	courseDoc struct {
		ID          string       `bson:"id"`
		VehicleType string       `bson:"vehicle_type"`
		Category    string       `bson:"category"`
		GridRows    int          `bson:"grid_rows"`
		GridCols    int          `bson:"grid_cols"`
		Attendance  []int32      `bson:"attendance"`
		Sessions    []sessionDoc `bson:"sessions"`
		CreatedAt   time.Time    `bson:"created_at"`
		UpdatedAt   time.Time    `bson:"updated_at"`
	}

	sessionDoc struct {
		ID          string    `bson:"id"`
		Date        string    `bson:"date"`
		Simulation  int       `bson:"simulation"`
		Ground      int       `bson:"ground"`
		Road        int       `bson:"road"`
		VehicleType string    `bson:"vehicle_type"`
		CreatedAt   time.Time `bson:"created_at"`
	}
)

func toCourseDocs(courses []course.Course) []courseDoc {
	docs := make([]courseDoc, 0, len(courses))
	for _, c := range courses {
		att := make([]int32, grid.CellCount)
		for i, s := range c.Attendance {
			att[i] = int32(s)
		}
		sessions := make([]sessionDoc, 0, len(c.Sessions))
		for _, s := range c.Sessions {
			sessions = append(sessions, sessionDoc{
				ID:          s.ID,
				Date:        s.Date,
				Simulation:  s.Simulation,
				Ground:      s.Ground,
				Road:        s.Road,
				VehicleType: string(s.VehicleType),
				CreatedAt:   s.CreatedAt.UTC(),
			})
		}
		docs = append(docs, courseDoc{
			ID:          c.ID,
			VehicleType: string(c.VehicleType),
			Category:    string(c.Category),
			GridRows:    c.GridRows,
			GridCols:    c.GridCols,
			Attendance:  att,
			Sessions:    sessions,
			CreatedAt:   c.CreatedAt.UTC(),
			UpdatedAt:   c.UpdatedAt.UTC(),
		})
	}
	return docs
}

// fromCourseDocs decodes stored courses. Short attendance arrays are padded
// with empty cells and unknown statuses are cleared by course normalization.
func fromCourseDocs(docs []courseDoc) []course.Course {
	courses := make([]course.Course, 0, len(docs))
	for _, d := range docs {
		c := course.Course{
			ID:          d.ID,
			VehicleType: course.VehicleType(d.VehicleType),
			Category:    course.VehicleType(d.Category),
			GridRows:    d.GridRows,
			GridCols:    d.GridCols,
			Sessions:    make([]course.Session, 0, len(d.Sessions)),
			CreatedAt:   d.CreatedAt.UTC(),
			UpdatedAt:   d.UpdatedAt.UTC(),
		}
		for i, s := range d.Attendance {
			if i >= grid.CellCount {
				break
			}
			c.Attendance[i] = grid.Status(s)
		}
		for _, s := range d.Sessions {
			c.Sessions = append(c.Sessions, course.Session{
				ID:          s.ID,
				Date:        s.Date,
				Simulation:  s.Simulation,
				Ground:      s.Ground,
				Road:        s.Road,
				VehicleType: course.VehicleType(s.VehicleType),
				CreatedAt:   s.CreatedAt.UTC(),
			})
		}
		courses = append(courses, c)
	}
	return courses
}

type courseRepository struct {
	coll *mongo.Collection
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *mongo.Database) course.Repository {
	return &courseRepository{coll: db.Collection(courseListsCollection)}
}

func (repo *courseRepository) LoadCourses(ctx context.Context, studentID string) (course.List, error) {
	var doc courseListDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": studentID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return course.List{StudentID: studentID, Courses: []course.Course{}}, nil
	}
	if err != nil {
		return course.List{}, errors.Wrap(err, "finding course list")
	}
	return course.List{StudentID: studentID, Version: doc.Version, Courses: fromCourseDocs(doc.Courses)}, nil
}

// SaveCourses inserts the first version of a list, then only replaces
// documents still at baseVersion.
func (repo *courseRepository) SaveCourses(ctx context.Context, studentID string, baseVersion int64, courses []course.Course) (course.List, error) {
	doc := courseListDoc{
		StudentID: studentID,
		Version:   baseVersion + 1,
		Courses:   toCourseDocs(courses),
		UpdatedAt: time.Now().UTC(),
	}

	if baseVersion == 0 {
		if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return course.List{}, course.ErrConflict
			}
			return course.List{}, errors.Wrap(err, "inserting course list")
		}
	} else {
		res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": studentID, "version": baseVersion}, doc)
		if err != nil {
			return course.List{}, errors.Wrap(err, "replacing course list")
		}
		if res.MatchedCount == 0 {
			return course.List{}, course.ErrConflict
		}
	}

	if courses == nil {
		courses = []course.Course{}
	}
	return course.List{StudentID: studentID, Version: doc.Version, Courses: courses}, nil
}
