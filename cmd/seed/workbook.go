package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/app/service"
	"github.com/ikkim/storerating-backend/internal/validation"
	"github.com/xuri/excelize/v2"
)

const (
	usersSheet  = "Users"
	storesSheet = "Stores"
)

type userRow struct {
	Line     int
	Name     string
	Email    string
	Password string
	Address  string
	Role     model.UserRole
}

type storeRow struct {
	Line       int
	Name       string
	Email      string
	Address    string
	OwnerEmail string
}

type workbook struct {
	Users   []userRow
	Stores  []storeRow
	Invalid []string
}

type importResult struct {
	UsersCreated  int
	StoresCreated int
	Skipped       []string
}

var validate = validator.New()

func readWorkbook(path string) (*workbook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer file.Close()
	return parseWorkbook(file)
}

// parseWorkbook reads the Users sheet (name, email, password, address, role)
// and the Stores sheet (name, email, address, owner email). The first row of
// each sheet is a header. Rows failing the API's field rules are reported in
// Invalid and left out.
func parseWorkbook(r io.Reader) (*workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	wb := &workbook{}

	userRows, err := sheetRows(f, usersSheet)
	if err != nil {
		return nil, err
	}
	for i, row := range userRows {
		line := i + 2
		u := userRow{
			Line:     line,
			Name:     cell(row, 0),
			Email:    cell(row, 1),
			Password: cell(row, 2),
			Address:  cell(row, 3),
			Role:     model.UserRole(strings.ToLower(cell(row, 4))),
		}
		if u.Role == "" {
			u.Role = model.RoleUser
		}
		if err := checkUser(u); err != nil {
			wb.Invalid = append(wb.Invalid, fmt.Sprintf("%s row %d: %v", usersSheet, line, err))
			continue
		}
		wb.Users = append(wb.Users, u)
	}

	storeRows, err := sheetRows(f, storesSheet)
	if err != nil {
		return nil, err
	}
	for i, row := range storeRows {
		line := i + 2
		s := storeRow{
			Line:       line,
			Name:       cell(row, 0),
			Email:      cell(row, 1),
			Address:    cell(row, 2),
			OwnerEmail: cell(row, 3),
		}
		if err := checkStore(s); err != nil {
			wb.Invalid = append(wb.Invalid, fmt.Sprintf("%s row %d: %v", storesSheet, line, err))
			continue
		}
		wb.Stores = append(wb.Stores, s)
	}

	return wb, nil
}

// sheetRows returns the data rows of sheet, or none when the sheet is absent.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func checkName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < validation.NameMinLength || n > validation.NameMaxLength {
		return fmt.Errorf("name must be %d-%d characters", validation.NameMinLength, validation.NameMaxLength)
	}
	return nil
}

func checkCommon(name, email, address string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return errors.New("email is invalid")
	}
	if address == "" || utf8.RuneCountInString(address) > validation.AddressMaxLength {
		return fmt.Errorf("address must be 1-%d characters", validation.AddressMaxLength)
	}
	return nil
}

func checkUser(u userRow) error {
	if err := checkCommon(u.Name, u.Email, u.Address); err != nil {
		return err
	}
	if !validation.IsStrongPassword(u.Password) {
		return errors.New("password is too weak")
	}
	if !u.Role.Valid() {
		return fmt.Errorf("unknown role %q", u.Role)
	}
	return nil
}

func checkStore(s storeRow) error {
	if err := checkCommon(s.Name, s.Email, s.Address); err != nil {
		return err
	}
	if err := validate.Var(s.OwnerEmail, "required,email"); err != nil {
		return errors.New("owner email is invalid")
	}
	return nil
}

// importWorkbook creates users first so stores can reference owners from the
// same workbook. Existing records and rejected stores are reported as skipped.
func importWorkbook(wb *workbook, admin service.AdminService, users repository.UserRepository) importResult {
	var result importResult

	for _, u := range wb.Users {
		if _, err := admin.CreateUser(u.Name, u.Email, u.Password, u.Address, u.Role); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s row %d (%s): %v", usersSheet, u.Line, u.Email, err))
			continue
		}
		result.UsersCreated++
	}

	for _, s := range wb.Stores {
		owner, err := users.FindByEmail(s.OwnerEmail)
		if err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s row %d (%s): owner %s not found", storesSheet, s.Line, s.Email, s.OwnerEmail))
			continue
		}
		if _, err := admin.CreateStore(s.Name, s.Email, s.Address, owner.ID); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s row %d (%s): %v", storesSheet, s.Line, s.Email, err))
			continue
		}
		result.StoresCreated++
	}

	return result
}
