package project

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sdkProject = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
  </PropertyGroup>
  <ItemGroup>
    <PackageReference Include="Newtonsoft.Json" Version="13.0.3" />
    <PackageReference Include="Polly" Version="8.0.0" />
  </ItemGroup>
  <ItemGroup Condition="'$(Configuration)' == 'Debug'">
    <PackageReference Include="Newtonsoft.Json">
      <Version>13.0.3</Version>
    </PackageReference>
  </ItemGroup>
</Project>`

func TestPackageReferenceNames(t *testing.T) {
	names, err := PackageReferenceNames(sdkProject)
	require.NoError(t, err)
	assert.Equal(t, []string{"Newtonsoft.Json", "Polly", "Newtonsoft.Json"}, names)
}

func TestPackageReferenceNames_NoReferences(t *testing.T) {
	names, err := PackageReferenceNames(`<Project><ItemGroup><Compile Include="a.cs" /></ItemGroup></Project>`)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestPackageReferenceNames_XMLDeclaration(t *testing.T) {
	src := `<?xml version="1.0" encoding="utf-8"?>
<Project ToolsVersion="15.0">
  <ItemGroup><PackageReference Include="Xamarin.Essentials" /></ItemGroup>
</Project>`

	names, err := PackageReferenceNames(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"Xamarin.Essentials"}, names)
}

func TestPackageReferenceNames_MissingInclude(t *testing.T) {
	src := `<Project>
  <ItemGroup>
    <PackageReference Include="Polly" />
    <PackageReference Update="Serilog" Version="3.1.1" />
  </ItemGroup>
</Project>`

	names, err := PackageReferenceNames(src)
	assert.Nil(t, names)
	require.True(t, errors.Is(err, ErrMissingInclude))

	var malformed *MalformedReferenceError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 2, malformed.Ordinal)
	assert.Contains(t, malformed.Error(), `Update="Serilog"`)
}

func TestPackageReferenceNames_InvalidXML(t *testing.T) {
	_, err := PackageReferenceNames(`<Project><PackageReference Include="Polly></Project>`)
	assert.True(t, errors.Is(err, ErrInvalidProject))
}
