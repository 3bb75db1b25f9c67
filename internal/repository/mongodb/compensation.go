package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/salary"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// compensationDocument is an employee as stored by the HR document store.
// Amounts are integer paise.
type compensationDocument struct {
	ID               primitive.ObjectID      `bson:"_id,omitempty"`
	EmployeeID       string                  `bson:"employeeId"`
	CompanyID        string                  `bson:"companyId"`
	EmployeeCode     string                  `bson:"employeeCode"`
	FullName         string                  `bson:"fullName"`
	Department       *string                 `bson:"department,omitempty"`
	EmploymentStatus string                  `bson:"employmentStatus"`
	SalaryStructure  salaryStructureDocument `bson:"salaryStructure"`
	UpdatedAt        time.Time               `bson:"updatedAt"`
}

type salaryStructureDocument struct {
	SalaryType       string `bson:"salaryType"`
	CareerStage      string `bson:"careerStage,omitempty"`
	BasicSalary      int64  `bson:"basicSalary"`
	SpecialAllowance int64  `bson:"specialAllowance"`
	OtherAllowance   int64  `bson:"otherAllowance"`
	IncomeTax        int64  `bson:"incomeTax"`
	OtherDeductions  int64  `bson:"otherDeductions"`
	SalesCount       int    `bson:"salesCount"`
	ReferralCount    int    `bson:"referralCount"`
}

func toDocument(c employee.EmployeeCompensation) compensationDocument {
	status := c.EmploymentStatus
	if status == "" {
		status = employee.EmploymentStatusActive
	}
	comp := c.Compensation
	return compensationDocument{
		EmployeeID:       c.EmployeeID,
		CompanyID:        c.CompanyID,
		EmployeeCode:     c.EmployeeCode,
		FullName:         c.FullName,
		Department:       c.Department,
		EmploymentStatus: string(status),
		SalaryStructure: salaryStructureDocument{
			SalaryType:       string(comp.SalaryType),
			CareerStage:      string(comp.CareerStage),
			BasicSalary:      int64(comp.BasicSalary),
			SpecialAllowance: int64(comp.SpecialAllowance),
			OtherAllowance:   int64(comp.OtherAllowance),
			IncomeTax:        int64(comp.IncomeTax),
			OtherDeductions:  int64(comp.OtherDeductions),
			SalesCount:       comp.SalesCount,
			ReferralCount:    comp.ReferralCount,
		},
		UpdatedAt: c.UpdatedAt,
	}
}

func (d compensationDocument) toEntity() employee.EmployeeCompensation {
	s := d.SalaryStructure
	return employee.EmployeeCompensation{
		EmployeeID:       d.EmployeeID,
		CompanyID:        d.CompanyID,
		EmployeeCode:     d.EmployeeCode,
		FullName:         d.FullName,
		Department:       d.Department,
		EmploymentStatus: employee.EmploymentStatus(d.EmploymentStatus),
		Compensation: salary.Compensation{
			SalaryType:       salary.SalaryType(s.SalaryType),
			CareerStage:      salary.CareerStage(s.CareerStage),
			BasicSalary:      salary.Money(s.BasicSalary),
			SpecialAllowance: salary.Money(s.SpecialAllowance),
			OtherAllowance:   salary.Money(s.OtherAllowance),
			IncomeTax:        salary.Money(s.IncomeTax),
			OtherDeductions:  salary.Money(s.OtherDeductions),
			SalesCount:       s.SalesCount,
			ReferralCount:    s.ReferralCount,
		},
		UpdatedAt: d.UpdatedAt,
	}
}

type compensationRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewCompensationRepository reads compensation from an employees collection.
func NewCompensationRepository(coll *mongo.Collection) employee.CompensationRepository {
	return &compensationRepository{coll: coll, now: time.Now}
}

// EnsureIndexes creates the unique (companyId, employeeId) index.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "companyId", Value: 1}, {Key: "employeeId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uk_company_employee"),
		},
		{
			Keys:    bson.D{{Key: "companyId", Value: 1}, {Key: "employmentStatus", Value: 1}, {Key: "employeeCode", Value: 1}},
			Options: options.Index().SetName("idx_company_status_code"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create employee indexes: %w", err)
	}
	return nil
}

func (r *compensationRepository) GetCompensation(ctx context.Context, employeeID string, companyID string) (employee.EmployeeCompensation, error) {
	var doc compensationDocument
	err := r.coll.FindOne(ctx, bson.M{"companyId": companyID, "employeeId": employeeID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return employee.EmployeeCompensation{}, employee.ErrEmployeeNotFound
		}
		return employee.EmployeeCompensation{}, fmt.Errorf("failed to get compensation for employee %s: %w", employeeID, err)
	}
	return doc.toEntity(), nil
}

func (r *compensationRepository) ListActiveCompensations(ctx context.Context, companyID string, employeeIDs []string) ([]employee.EmployeeCompensation, error) {
	filter := bson.M{
		"companyId":        companyID,
		"employmentStatus": string(employee.EmploymentStatusActive),
	}
	if len(employeeIDs) > 0 {
		filter["employeeId"] = bson.M{"$in": employeeIDs}
	}

	opts := options.Find().SetSort(bson.D{{Key: "employeeCode", Value: 1}, {Key: "employeeId", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensations: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []compensationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode compensations: %w", err)
	}

	result := make([]employee.EmployeeCompensation, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.toEntity())
	}
	return result, nil
}

func (r *compensationRepository) UpsertCompensation(ctx context.Context, c employee.EmployeeCompensation) (employee.EmployeeCompensation, error) {
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = r.now().UTC().Truncate(time.Millisecond)
	}
	doc := toDocument(c)

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var saved compensationDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"companyId": c.CompanyID, "employeeId": c.EmployeeID},
		bson.M{"$set": doc},
		opts,
	).Decode(&saved)
	if err != nil {
		return employee.EmployeeCompensation{}, fmt.Errorf("failed to upsert compensation for employee %s: %w", c.EmployeeID, err)
	}
	return saved.toEntity(), nil
}
